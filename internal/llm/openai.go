// Package llm wraps the OpenAI API behind the narrow interfaces the
// rest of the service depends on: embeddings, chat completion, speech
// to text and text to speech.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/webwhiz/webwhiz/internal/config"
	"github.com/webwhiz/webwhiz/internal/domain"
)

// Client talks to OpenAI for every model-backed operation. All calls
// are single-shot: no streaming completions, no retry.
type Client struct {
	api *openai.Client
	cfg config.OpenAI
}

func NewClient(cfg config.OpenAI) *Client {
	return &Client{
		api: openai.NewClient(cfg.APIKey),
		cfg: cfg,
	}
}

// Embed computes embedding vectors for texts in one request.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Generate runs a single chat completion over messages and returns the
// assistant's reply.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.cfg.ChatModel,
		Messages: make([]openai.ChatCompletionMessage, len(messages)),
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe writes audio to a temporary file, submits it to the
// transcription model and returns the recognized text. The temporary
// file is removed on every exit path, including transcription failure.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "webwhiz-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, audio); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscribeModel,
		FilePath: tmp.Name(),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return resp.Text, nil
}

// Speak renders text as a streamed WAV rendering with the configured
// voice. The returned stream is finite and not restartable.
func (c *Client) Speak(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.cfg.SpeechVoice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	return resp, nil
}
