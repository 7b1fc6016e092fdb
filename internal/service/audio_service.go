package service

import (
	"context"
	"io"

	"github.com/webwhiz/webwhiz/internal/domain"
	"go.uber.org/zap"
)

// AudioService bridges spoken questions and spoken answers: speech to
// text, text to speech, and the combined talk flow. It holds no state
// of its own.
type AudioService struct {
	transcriber domain.Transcriber
	speaker     domain.Speaker
	chat        *ChatService
	logger      *zap.Logger
}

// NewAudioService creates a new audio service
func NewAudioService(
	transcriber domain.Transcriber,
	speaker domain.Speaker,
	chat *ChatService,
	logger *zap.Logger,
) *AudioService {
	return &AudioService{
		transcriber: transcriber,
		speaker:     speaker,
		chat:        chat,
		logger:      logger,
	}
}

// Transcribe converts spoken audio into text.
func (s *AudioService) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	return s.transcriber.Transcribe(ctx, audio)
}

// SpokenAnswer answers the question and renders the answer as audio.
func (s *AudioService) SpokenAnswer(ctx context.Context, sessionID, question string) (io.ReadCloser, error) {
	answer, err := s.chat.Answer(ctx, sessionID, question)
	if err != nil {
		return nil, err
	}
	return s.speaker.Speak(ctx, answer)
}

// Talk transcribes a spoken question, answers it against the session's
// material and synthesizes the answer back to audio.
func (s *AudioService) Talk(ctx context.Context, sessionID string, audio io.Reader) (io.ReadCloser, error) {
	question, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	s.logger.Info("transcribed spoken question",
		zap.String("session_id", sessionID),
		zap.Int("question_len", len(question)),
	)
	return s.SpokenAnswer(ctx, sessionID, question)
}
