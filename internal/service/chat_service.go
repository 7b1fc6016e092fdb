package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/repository"
	"go.uber.org/zap"
)

const answerSystemPrompt = `You are a chatbot that answers questions based on the knowledge provided.
Answer the user's questions based on the below context.
Also note, keep the answers very brief, mostly upto 3 sentences.
Format your messages as a script which would be used by an assistant as it is.

Context:
%s`

const contextSeparator = "\n--------\n"

// ChatService answers questions against a session's ingested material
// and scores how well the retrieved context matches the question.
type ChatService struct {
	sessions  *repository.SessionStore
	store     domain.VectorStore
	generator domain.Generator
	logger    *zap.Logger

	topK               int
	confidenceTopK     int
	confidenceFallback float64
}

// NewChatService creates a new chat service
func NewChatService(
	sessions *repository.SessionStore,
	store domain.VectorStore,
	generator domain.Generator,
	logger *zap.Logger,
	topK, confidenceTopK int,
	confidenceFallback float64,
) *ChatService {
	if topK <= 0 {
		topK = 4
	}
	if confidenceTopK <= 0 {
		confidenceTopK = 4
	}
	return &ChatService{
		sessions:           sessions,
		store:              store,
		generator:          generator,
		logger:             logger,
		topK:               topK,
		confidenceTopK:     confidenceTopK,
		confidenceFallback: confidenceFallback,
	}
}

// Answer retrieves the session's most relevant chunks, composes a
// prompt with the bounded chat history and asks the model once. The
// (question, answer) turn is appended to history strictly after the
// model call returns. Retrieval and model errors propagate.
func (s *ChatService) Answer(ctx context.Context, sessionID, question string) (string, error) {
	history := s.sessions.History(sessionID)

	results, err := s.store.Query(ctx, sessionID, question, s.topK)
	if err != nil {
		return "", err
	}

	messages := make([]domain.ChatMessage, 0, len(history)*2+2)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: fmt.Sprintf(answerSystemPrompt, formatContext(results)),
	})
	for _, turn := range history {
		messages = append(messages,
			domain.ChatMessage{Role: domain.RoleUser, Content: turn.Question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: turn.Answer},
		)
	}
	messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})

	answer, err := s.generator.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	s.sessions.AppendTurn(sessionID, domain.ChatTurn{Question: question, Answer: answer})
	return answer, nil
}

// Confidence converts the similarity scores of the top retrieved
// chunks into a percentage in [0, 100]. An empty result is exactly 0;
// any retrieval error degrades to the configured fallback instead of
// failing the caller.
func (s *ChatService) Confidence(ctx context.Context, sessionID, question string) float64 {
	results, err := s.store.Query(ctx, sessionID, question, s.confidenceTopK)
	if err != nil {
		s.logger.Warn("confidence scoring failed, using fallback",
			zap.String("session_id", sessionID),
			zap.Float64("fallback", s.confidenceFallback),
			zap.Error(err),
		)
		return s.confidenceFallback
	}
	if len(results) == 0 {
		return 0.0
	}

	var total float64
	for _, r := range results {
		total += similarityToConfidence(r.Score)
	}
	return clamp(total/float64(len(results)), 0, 100)
}

// AnswerWithConfidence answers the question and attaches a confidence
// score for the same retrieval.
func (s *ChatService) AnswerWithConfidence(ctx context.Context, sessionID, question string) (domain.AnswerResult, error) {
	answer, err := s.Answer(ctx, sessionID, question)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{
		Answer:          answer,
		ConfidenceScore: s.Confidence(ctx, sessionID, question),
	}, nil
}

// similarityToConfidence maps a cosine similarity in [-1, 1] linearly
// onto [0, 100].
func similarityToConfidence(score float64) float64 {
	return (score + 1) / 2 * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// formatContext renders retrieved chunks for the system prompt, each
// annotated with the page it came from.
func formatContext(results []domain.ScoredChunk) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Page link: %s\n\nPage content:\n%s", r.Chunk.Source, r.Chunk.Text)
	}
	return strings.Join(parts, contextSeparator)
}
