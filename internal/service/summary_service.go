package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/fetcher"
	"github.com/webwhiz/webwhiz/internal/repository"
	"go.uber.org/zap"
)

const mapPrompt = `Write a concise summary of the following:

%s

CONCISE SUMMARY:`

const reducePrompt = `The following is a set of summaries:

%s

Take these and distill them into a final, consolidated summary of the main themes.

FINAL SUMMARY:`

// SummaryService produces map-reduce summaries of freshly fetched
// links. It never reads the vector store, so the summary input is
// independent of whatever the session previously ingested.
type SummaryService struct {
	sessions  *repository.SessionStore
	web       domain.WebFetcher
	wiki      domain.WikiFetcher
	splitter  domain.Chunker
	generator domain.Generator
	logger    *zap.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	sessions *repository.SessionStore,
	web domain.WebFetcher,
	wiki domain.WikiFetcher,
	splitter domain.Chunker,
	generator domain.Generator,
	logger *zap.Logger,
) *SummaryService {
	return &SummaryService{
		sessions:  sessions,
		web:       web,
		wiki:      wiki,
		splitter:  splitter,
		generator: generator,
		logger:    logger,
	}
}

// Summarize re-fetches link and runs a map-reduce summarization over
// its chunks: each chunk is summarized independently, then the partial
// summaries are reduced into one. Wiki links require credentials
// stored for the session at ingest time; a missing tuple fails with
// ErrCredentialsNotFound. No caching; every call re-fetches.
func (s *SummaryService) Summarize(ctx context.Context, sessionID, link string) (string, error) {
	pages, err := s.fetch(ctx, sessionID, link)
	if err != nil {
		return "", err
	}

	var pieces []string
	for _, page := range pages {
		pieces = append(pieces, s.splitter.Split(page.Text)...)
	}
	if len(pieces) == 0 {
		return "", fmt.Errorf("no content to summarize at %q: %w", link, domain.ErrInvalidRequest)
	}

	s.logger.Info("summarizing link",
		zap.String("session_id", sessionID),
		zap.String("link", link),
		zap.Int("chunks", len(pieces)),
	)

	partials := make([]string, len(pieces))
	for i, piece := range pieces {
		partial, err := s.generator.Generate(ctx, []domain.ChatMessage{{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf(mapPrompt, piece),
		}})
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", i, err)
		}
		partials[i] = partial
	}

	if len(partials) == 1 {
		return partials[0], nil
	}

	final, err := s.generator.Generate(ctx, []domain.ChatMessage{{
		Role:    domain.RoleUser,
		Content: fmt.Sprintf(reducePrompt, strings.Join(partials, "\n\n")),
	}})
	if err != nil {
		return "", fmt.Errorf("reduce summaries: %w", err)
	}
	return final, nil
}

func (s *SummaryService) fetch(ctx context.Context, sessionID, link string) ([]domain.Page, error) {
	if fetcher.IsWikiLink(link) {
		creds, err := s.sessions.Credentials(sessionID)
		if err != nil {
			return nil, err
		}
		return s.wiki.FetchPages(ctx, creds)
	}

	page, err := s.web.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	return []domain.Page{page}, nil
}
