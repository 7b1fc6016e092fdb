package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/webwhiz/webwhiz/internal/domain"
	"go.uber.org/zap"
)

var errUpstream = errors.New("upstream failure")

type fakeStore struct {
	added    []domain.Chunk
	results  []domain.ScoredChunk
	queryErr error
	addErr   error

	deleted []string
	queries []string
}

func (f *fakeStore) Add(_ context.Context, chunks []domain.Chunk) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, chunks...)
	return nil
}

func (f *fakeStore) Query(_ context.Context, sessionID, question string, topK int) ([]domain.ScoredChunk, error) {
	f.queries = append(f.queries, question)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.results) > topK {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func (f *fakeStore) Delete(_ context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type fakeGenerator struct {
	answer   string
	err      error
	prompts  [][]domain.ChatMessage
	answers  []string // consumed in order when set
}

func (f *fakeGenerator) Generate(_ context.Context, messages []domain.ChatMessage) (string, error) {
	f.prompts = append(f.prompts, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) > 0 {
		next := f.answers[0]
		f.answers = f.answers[1:]
		return next, nil
	}
	return f.answer, nil
}

type fakeWeb struct {
	page domain.Page
	err  error
}

func (f *fakeWeb) Fetch(_ context.Context, link string) (domain.Page, error) {
	if f.err != nil {
		return domain.Page{}, f.err
	}
	page := f.page
	if page.URL == "" {
		page.URL = link
	}
	return page, nil
}

type fakeWiki struct {
	pages []domain.Page
	err   error
	creds []domain.WikiCredentials
}

func (f *fakeWiki) FetchPages(_ context.Context, creds domain.WikiCredentials) ([]domain.Page, error) {
	f.creds = append(f.creds, creds)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// paragraphSplitter splits on blank lines, enough structure for
// service-level tests.
type paragraphSplitter struct{}

func (paragraphSplitter) Split(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ io.Reader) (string, error) {
	return f.text, f.err
}

type fakeSpeaker struct {
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.spoken = append(f.spoken, text)
	return io.NopCloser(strings.NewReader("RIFF" + text)), nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
