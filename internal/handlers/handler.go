package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/config"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/pipeline"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger       *logging.Logger
	analysis     config.AnalysisConfig
	loader       pipeline.TableLoader
	allowSources bool
}

// New creates a new handler instance. analysis supplies the defaults every
// analysis request starts from; loader serves requests that name sources.
func New(logger *logging.Logger, cfg config.Config, loader pipeline.TableLoader) *Handler {
	return &Handler{
		logger:       logger,
		analysis:     cfg.Analysis,
		loader:       loader,
		allowSources: cfg.Server.AllowSources,
	}
}

// log returns the handler logger tagged with the request id
func (h *Handler) log(c *fiber.Ctx) *logging.Logger {
	return h.logger.WithContext(c.UserContext())
}
