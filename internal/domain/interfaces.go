package domain

import (
	"context"
	"io"
)

// Embedder converts text into numeric vector representations.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a completion from an ordered list of chat messages.
type Generator interface {
	Generate(ctx context.Context, messages []ChatMessage) (string, error)
}

// VectorStore persists chunks and supports session-scoped similarity
// search. Every query and delete is restricted to entries whose
// session id matches; chunks from one session must never surface in
// another session's results.
type VectorStore interface {
	Add(ctx context.Context, chunks []Chunk) error
	Query(ctx context.Context, sessionID, question string, topK int) ([]ScoredChunk, error)
	Delete(ctx context.Context, sessionID string) error
}

// WebFetcher retrieves a generic web page as plain text.
type WebFetcher interface {
	Fetch(ctx context.Context, link string) (Page, error)
}

// WikiFetcher retrieves wiki pages using stored credentials.
type WikiFetcher interface {
	FetchPages(ctx context.Context, creds WikiCredentials) ([]Page, error)
}

// Chunker splits document text into overlapping spans for indexing.
type Chunker interface {
	Split(text string) []string
}

// Transcriber converts spoken audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Speaker renders text as a finite, non-restartable audio stream.
// The caller owns the returned stream and must close it.
type Speaker interface {
	Speak(ctx context.Context, text string) (io.ReadCloser, error)
}
