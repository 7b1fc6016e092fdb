package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/repository"
)

func TestSummarizeMapReduce(t *testing.T) {
	t.Parallel()
	sessions := repository.NewSessionStore(20)
	web := &fakeWeb{page: domain.Page{Text: "part one\n\npart two\n\npart three"}}
	gen := &fakeGenerator{answers: []string{"sum1", "sum2", "sum3", "final summary"}}

	svc := NewSummaryService(sessions, web, &fakeWiki{}, paragraphSplitter{}, gen, testLogger())
	got, err := svc.Summarize(context.Background(), "s1", "https://example.com/article")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "final summary" {
		t.Errorf("Summarize() = %q, want final summary", got)
	}

	// three map calls plus one reduce call
	if len(gen.prompts) != 4 {
		t.Fatalf("model called %d times, want 4", len(gen.prompts))
	}
	for i, chunk := range []string{"part one", "part two", "part three"} {
		if !strings.Contains(gen.prompts[i][0].Content, chunk) {
			t.Errorf("map prompt %d missing %q", i, chunk)
		}
	}
	reduce := gen.prompts[3][0].Content
	for _, partial := range []string{"sum1", "sum2", "sum3"} {
		if !strings.Contains(reduce, partial) {
			t.Errorf("reduce prompt missing partial %q", partial)
		}
	}
}

func TestSummarizeSingleChunkSkipsReduce(t *testing.T) {
	t.Parallel()
	web := &fakeWeb{page: domain.Page{Text: "only one paragraph"}}
	gen := &fakeGenerator{answer: "the summary"}

	svc := NewSummaryService(repository.NewSessionStore(20), web, &fakeWiki{}, paragraphSplitter{}, gen, testLogger())
	got, err := svc.Summarize(context.Background(), "s1", "https://example.com")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "the summary" {
		t.Errorf("Summarize() = %q", got)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("model called %d times, want 1", len(gen.prompts))
	}
}

func TestSummarizeWikiLinkWithoutCredentials(t *testing.T) {
	t.Parallel()
	svc := NewSummaryService(repository.NewSessionStore(20), &fakeWeb{}, &fakeWiki{}, paragraphSplitter{}, &fakeGenerator{}, testLogger())

	_, err := svc.Summarize(context.Background(), "s1", "https://acme.atlassian.net/wiki/spaces/ENG/pages/1")
	if !errors.Is(err, domain.ErrCredentialsNotFound) {
		t.Fatalf("Summarize() error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestSummarizeWikiLinkUsesStoredCredentials(t *testing.T) {
	t.Parallel()
	sessions := repository.NewSessionStore(20)
	creds := domain.WikiCredentials{BaseURL: "https://acme.atlassian.net/wiki", PageID: "7"}
	sessions.SetCredentials("s1", creds)

	wiki := &fakeWiki{pages: []domain.Page{{Text: "wiki body"}}}
	gen := &fakeGenerator{answer: "wiki summary"}

	svc := NewSummaryService(sessions, &fakeWeb{}, wiki, paragraphSplitter{}, gen, testLogger())
	got, err := svc.Summarize(context.Background(), "s1", "https://acme.atlassian.net/wiki/spaces/ENG/pages/7")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "wiki summary" {
		t.Errorf("Summarize() = %q", got)
	}
	if len(wiki.creds) != 1 || wiki.creds[0] != creds {
		t.Errorf("wiki fetch did not use stored credentials: %+v", wiki.creds)
	}
}

func TestSummarizeEmptyPage(t *testing.T) {
	t.Parallel()
	svc := NewSummaryService(repository.NewSessionStore(20), &fakeWeb{page: domain.Page{Text: "   "}}, &fakeWiki{}, paragraphSplitter{}, &fakeGenerator{}, testLogger())
	if _, err := svc.Summarize(context.Background(), "s1", "https://example.com/empty"); err == nil {
		t.Fatal("Summarize() expected error for empty content")
	}
}
