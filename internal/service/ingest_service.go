package service

import (
	"context"

	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/repository"
	"go.uber.org/zap"
)

// IngestService turns web and wiki links into session-scoped chunks in
// the vector store.
type IngestService struct {
	sessions *repository.SessionStore
	store    domain.VectorStore
	web      domain.WebFetcher
	wiki     domain.WikiFetcher
	splitter domain.Chunker
	logger   *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	sessions *repository.SessionStore,
	store domain.VectorStore,
	web domain.WebFetcher,
	wiki domain.WikiFetcher,
	splitter domain.Chunker,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		sessions: sessions,
		store:    store,
		web:      web,
		wiki:     wiki,
		splitter: splitter,
		logger:   logger,
	}
}

// UploadLink creates a session for sessionID and ingests the page at
// link into the vector store. Re-using an existing session id fails
// with ErrSessionExists before anything is fetched or stored.
func (s *IngestService) UploadLink(ctx context.Context, sessionID, link string) error {
	if _, err := s.sessions.Create(sessionID, link); err != nil {
		return err
	}

	page, err := s.web.Fetch(ctx, link)
	if err != nil {
		return err
	}

	chunks := s.chunkPages(sessionID, []domain.Page{page})
	s.logger.Info("ingesting link",
		zap.String("session_id", sessionID),
		zap.String("link", link),
		zap.Int("chunks", len(chunks)),
	)
	return s.store.Add(ctx, chunks)
}

// UploadWikiLink stores the wiki credentials for sessionID, fetches
// the referenced pages and ingests them. The credentials stay around
// for later summarize calls against the same session.
func (s *IngestService) UploadWikiLink(ctx context.Context, sessionID, link string, creds domain.WikiCredentials) error {
	// Wiki uploads may add pages to an existing session; only the
	// generic path enforces one-link-per-session.
	if _, ok := s.sessions.Get(sessionID); !ok {
		if _, err := s.sessions.Create(sessionID, link); err != nil {
			return err
		}
	}
	s.sessions.SetCredentials(sessionID, creds)

	pages, err := s.wiki.FetchPages(ctx, creds)
	if err != nil {
		return err
	}

	chunks := s.chunkPages(sessionID, pages)
	s.logger.Info("ingesting wiki link",
		zap.String("session_id", sessionID),
		zap.String("link", link),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
	)
	return s.store.Add(ctx, chunks)
}

// Reset purges the session's vector store entries only. Session
// metadata, chat history and credentials survive, preserving
// conversational continuity; use ResetAll to start over completely.
func (s *IngestService) Reset(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// ResetAll purges vector store entries, session metadata, chat history
// and credentials. The session id becomes reusable.
func (s *IngestService) ResetAll(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.sessions.PurgeAll(sessionID)
	return nil
}

func (s *IngestService) chunkPages(sessionID string, pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	for _, page := range pages {
		for _, text := range s.splitter.Split(page.Text) {
			chunks = append(chunks, domain.Chunk{
				Text:      text,
				Source:    page.URL,
				SessionID: sessionID,
			})
		}
	}
	return chunks
}
