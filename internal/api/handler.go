package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webwhiz/webwhiz/internal/api/middleware"
	"github.com/webwhiz/webwhiz/internal/domain"
	"github.com/webwhiz/webwhiz/internal/service"
	"go.uber.org/zap"
)

// Handler handles the public API surface
type Handler struct {
	ingest  *service.IngestService
	chat    *service.ChatService
	summary *service.SummaryService
	audio   *service.AudioService
	logger  *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	ingest *service.IngestService,
	chat *service.ChatService,
	summary *service.SummaryService,
	audio *service.AudioService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		ingest:  ingest,
		chat:    chat,
		summary: summary,
		audio:   audio,
		logger:  logger,
	}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/upload", h.UploadLink)
	r.POST("/upload/confluence", h.UploadConfluenceLink)
	r.DELETE("/reset", h.Reset)
	r.DELETE("/reset/all", h.ResetAll)
	r.GET("/answer", h.Answer)
	r.GET("/audio", h.AudioAnswer)
	r.GET("/summarize", h.Summarize)
	r.POST("/transcribe", h.Transcribe)
	r.POST("/talk", h.Talk)
}

// Root is a liveness ping
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from WebWhiz"})
}

// Health is a health ping
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Health check : OK"})
}

// UploadLink ingests a generic link into a new session
func (h *Handler) UploadLink(c *gin.Context) {
	sessionID, link := c.Query("session_id"), c.Query("link")
	if sessionID == "" || link == "" {
		h.respondError(c, missingParams("session_id", "link"))
		return
	}

	h.log(c).Info("uploading link", zap.String("session_id", sessionID), zap.String("link", link))
	if err := h.ingest.UploadLink(c.Request.Context(), sessionID, link); err != nil {
		h.respondError(c, err)
		return
	}
	h.log(c).Info("upload link success", zap.String("session_id", sessionID))
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// UploadConfluenceLink ingests a wiki page and stores its credentials
// for later use by the summarizer
func (h *Handler) UploadConfluenceLink(c *gin.Context) {
	sessionID, link := c.Query("session_id"), c.Query("link")
	creds := domain.WikiCredentials{
		BaseURL:  c.Query("base_url"),
		Username: c.Query("username"),
		APIKey:   c.Query("api_key"),
		PageID:   c.Query("page_id"),
	}
	if sessionID == "" || link == "" || creds.BaseURL == "" || creds.PageID == "" {
		h.respondError(c, missingParams("session_id", "link", "base_url", "page_id"))
		return
	}

	h.log(c).Info("uploading confluence link", zap.String("session_id", sessionID), zap.String("link", link))
	if err := h.ingest.UploadWikiLink(c.Request.Context(), sessionID, link, creds); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// Reset purges the session's vector store entries
func (h *Handler) Reset(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.respondError(c, missingParams("session_id"))
		return
	}

	h.log(c).Info("resetting session", zap.String("session_id", sessionID))
	if err := h.ingest.Reset(c.Request.Context(), sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// ResetAll purges vector store entries plus all in-memory session state
func (h *Handler) ResetAll(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.respondError(c, missingParams("session_id"))
		return
	}

	h.log(c).Info("resetting session completely", zap.String("session_id", sessionID))
	if err := h.ingest.ResetAll(c.Request.Context(), sessionID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// Answer returns a text answer with a confidence score
func (h *Handler) Answer(c *gin.Context) {
	sessionID, question := c.Query("session_id"), c.Query("question")
	if sessionID == "" || question == "" {
		h.respondError(c, missingParams("session_id", "question"))
		return
	}

	result, err := h.chat.AnswerWithConfidence(c.Request.Context(), sessionID, question)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "OK",
		"data": gin.H{
			"answer":           result.Answer,
			"confidence_score": result.ConfidenceScore,
		},
	})
}

// AudioAnswer returns the answer as a streamed audio rendering
func (h *Handler) AudioAnswer(c *gin.Context) {
	sessionID, question := c.Query("session_id"), c.Query("question")
	if sessionID == "" || question == "" {
		h.respondError(c, missingParams("session_id", "question"))
		return
	}

	stream, err := h.audio.SpokenAnswer(c.Request.Context(), sessionID, question)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.streamAudio(c, stream)
}

// Summarize re-fetches a link and returns a map-reduce summary
func (h *Handler) Summarize(c *gin.Context) {
	sessionID, link := c.Query("session_id"), c.Query("link")
	if sessionID == "" || link == "" {
		h.respondError(c, missingParams("session_id", "link"))
		return
	}

	h.log(c).Info("summarizing link", zap.String("session_id", sessionID), zap.String("link", link))
	summary, err := h.summary.Summarize(c.Request.Context(), sessionID, link)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "OK",
		"data":    gin.H{"summary": summary},
	})
}

// Transcribe converts an uploaded audio file to text
func (h *Handler) Transcribe(c *gin.Context) {
	audio, err := h.openAudioFile(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer audio.Close()

	text, err := h.audio.Transcribe(c.Request.Context(), audio)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": text})
}

// Talk transcribes a spoken question, answers it and streams the
// synthesized answer back
func (h *Handler) Talk(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.respondError(c, missingParams("session_id"))
		return
	}
	audio, err := h.openAudioFile(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer audio.Close()

	stream, err := h.audio.Talk(c.Request.Context(), sessionID, audio)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.streamAudio(c, stream)
}

func (h *Handler) openAudioFile(c *gin.Context) (io.ReadCloser, error) {
	file, err := c.FormFile("audio")
	if err != nil {
		return nil, missingParams("audio")
	}
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (h *Handler) streamAudio(c *gin.Context, stream io.ReadCloser) {
	defer stream.Close()
	c.Header("Content-Type", "audio/wav")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Headers are gone; nothing left to do but log.
		h.log(c).Warn("audio stream interrupted", zap.Error(err))
	}
}

// respondError maps domain error kinds to HTTP status codes. Unknown
// errors become a 500 with the standard envelope; raw stack traces
// never reach the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrCredentialsNotFound):
		status = http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.log(c).Error("request failed", zap.Error(err))
	} else {
		h.log(c).Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error":  http.StatusText(status),
		"detail": err.Error(),
	})
}

func (h *Handler) log(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", middleware.GetRequestID(c)))
}

func missingParams(names ...string) error {
	return &paramError{names: names}
}

type paramError struct {
	names []string
}

func (e *paramError) Error() string {
	msg := "missing required parameter(s):"
	for _, n := range e.names {
		msg += " " + n
	}
	return msg
}

func (e *paramError) Unwrap() error { return domain.ErrInvalidRequest }
