package service

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/repository"
)

func newChatService(store *fakeStore, gen *fakeGenerator, sessions *repository.SessionStore) *ChatService {
	return NewChatService(sessions, store, gen, testLogger(), 4, 4, 78)
}

func TestAnswerComposesPromptAndAppendsHistory(t *testing.T) {
	t.Parallel()
	sessions := repository.NewSessionStore(20)
	sessions.AppendTurn("s1", domain.ChatTurn{Question: "earlier q", Answer: "earlier a"})

	store := &fakeStore{results: []domain.ScoredChunk{
		{Chunk: domain.Chunk{Text: "chunk one", Source: "https://example.com/article", SessionID: "s1"}, Score: 0.9},
		{Chunk: domain.Chunk{Text: "chunk two", Source: "https://example.com/article", SessionID: "s1"}, Score: 0.5},
	}}
	gen := &fakeGenerator{answer: "Paris is the capital."}

	svc := newChatService(store, gen, sessions)
	answer, err := svc.Answer(context.Background(), "s1", "What is the capital?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer != "Paris is the capital." {
		t.Errorf("Answer() = %q", answer)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(gen.prompts))
	}
	msgs := gen.prompts[0]

	// system + 2 history messages + question
	if len(msgs) != 4 {
		t.Fatalf("prompt has %d messages, want 4", len(msgs))
	}
	system := msgs[0]
	if system.Role != domain.RoleSystem {
		t.Errorf("first message role = %q, want system", system.Role)
	}
	for _, want := range []string{"chunk one", "chunk two", "Page link: https://example.com/article", "--------"} {
		if !strings.Contains(system.Content, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if msgs[1].Content != "earlier q" || msgs[2].Content != "earlier a" {
		t.Errorf("history not carried into prompt: %+v", msgs[1:3])
	}
	if last := msgs[len(msgs)-1]; last.Role != domain.RoleUser || last.Content != "What is the capital?" {
		t.Errorf("question not last message: %+v", last)
	}

	history := sessions.History("s1")
	if len(history) != 2 {
		t.Fatalf("history has %d turns, want 2", len(history))
	}
	if history[1].Question != "What is the capital?" || history[1].Answer != "Paris is the capital." {
		t.Errorf("turn not appended: %+v", history[1])
	}
}

func TestAnswerModelErrorLeavesHistoryUntouched(t *testing.T) {
	t.Parallel()
	sessions := repository.NewSessionStore(20)
	store := &fakeStore{}
	gen := &fakeGenerator{err: errUpstream}

	svc := newChatService(store, gen, sessions)
	if _, err := svc.Answer(context.Background(), "s1", "q"); err == nil {
		t.Fatal("Answer() expected model error")
	}
	if got := len(sessions.History("s1")); got != 0 {
		t.Errorf("history has %d turns after failed answer, want 0", got)
	}
}

func TestConfidenceMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		results []domain.ScoredChunk
		want    float64
	}{
		{
			name:    "perfect match",
			results: []domain.ScoredChunk{{Score: 1}},
			want:    100,
		},
		{
			name:    "orthogonal",
			results: []domain.ScoredChunk{{Score: 0}},
			want:    50,
		},
		{
			name:    "opposite",
			results: []domain.ScoredChunk{{Score: -1}},
			want:    0,
		},
		{
			name:    "mean of several",
			results: []domain.ScoredChunk{{Score: 1}, {Score: 0}},
			want:    75,
		},
		{
			name:    "empty retrieval",
			results: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newChatService(&fakeStore{results: tt.results}, &fakeGenerator{}, repository.NewSessionStore(20))
			got := svc.Confidence(context.Background(), "s1", "q")
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfidenceErrorFallsBack(t *testing.T) {
	t.Parallel()
	svc := newChatService(&fakeStore{queryErr: errUpstream}, &fakeGenerator{}, repository.NewSessionStore(20))
	if got := svc.Confidence(context.Background(), "s1", "q"); got != 78 {
		t.Errorf("Confidence() = %v, want fallback 78", got)
	}
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	t.Parallel()
	// Scores outside the cosine convention must still clamp.
	svc := newChatService(&fakeStore{results: []domain.ScoredChunk{{Score: 3.7}}}, &fakeGenerator{}, repository.NewSessionStore(20))
	got := svc.Confidence(context.Background(), "s1", "q")
	if got < 0 || got > 100 {
		t.Errorf("Confidence() = %v, want within [0,100]", got)
	}
}

func TestAnswerWithConfidence(t *testing.T) {
	t.Parallel()
	store := &fakeStore{results: []domain.ScoredChunk{{Chunk: domain.Chunk{Text: "c", SessionID: "s1"}, Score: 0.5}}}
	gen := &fakeGenerator{answer: "an answer"}
	svc := newChatService(store, gen, repository.NewSessionStore(20))

	result, err := svc.AnswerWithConfidence(context.Background(), "s1", "q")
	if err != nil {
		t.Fatalf("AnswerWithConfidence() error = %v", err)
	}
	if result.Answer != "an answer" {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.ConfidenceScore != 75 {
		t.Errorf("ConfidenceScore = %v, want 75", result.ConfidenceScore)
	}
}
