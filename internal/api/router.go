package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/webwhiz/webwhiz/internal/api/middleware"
	"github.com/webwhiz/webwhiz/internal/service"
	"go.uber.org/zap"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	ingestService *service.IngestService,
	chatService *service.ChatService,
	summaryService *service.SummaryService,
	audioService *service.AudioService,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()

	// Request id first so the recovery envelope carries it too.
	r.Use(middleware.RequestID())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":  "Internal Server Error",
			"detail": "unexpected server error",
		})
	}))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	handler := NewHandler(ingestService, chatService, summaryService, audioService, logger)
	handler.RegisterRoutes(r)

	return r
}
