package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"psenrich/internal/models"
	"psenrich/internal/pkg/cardcache"
	"psenrich/internal/pkg/utils"
)

// JobStarter starts enrichment jobs (implemented by enrich.Runner).
type JobStarter interface {
	Start(req models.EnrichRequest) (*models.EnrichmentJob, bool, error)
}

// JobReader is the read/cancel slice of the job repository.
type JobReader interface {
	Get(id string) (*models.EnrichmentJob, error)
	RequestCancel(id string) (*models.EnrichmentJob, error)
}

// CardReader looks up stored cmdlet cards.
type CardReader interface {
	FindByName(name string) (*models.CmdletCard, error)
}

// Inventory pages through and registers entries in the cmdlet inventory.
type Inventory interface {
	ListInventory(limit, page int, search string) ([]models.CmdletListEntry, int64, error)
	UpsertByName(name, module string) (*models.Cmdlet, error)
}

// CommandHandler serves the /api/commands surface: the enrichment job
// endpoints and cmdlet card lookups.
type CommandHandler struct {
	runner    JobStarter
	jobs      JobReader
	cards     CardReader
	inventory Inventory
	cache     cardcache.Cache
	logger    *zap.Logger
}

func NewCommandHandler(runner JobStarter, jobs JobReader, cards CardReader, inventory Inventory, cache cardcache.Cache, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		runner:    runner,
		jobs:      jobs,
		cards:     cards,
		inventory: inventory,
		cache:     cache,
		logger:    logger,
	}
}

// StartEnrichment handles POST /api/commands/enrich.
// 202 when a new job was created; 409 with the existing job when one is
// already active — the conflict is a normal "join the running job" answer,
// not a failure.
func (h *CommandHandler) StartEnrichment(c echo.Context) error {
	var req models.EnrichRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "invalid request body")
		}
	}

	job, alreadyRunning, err := h.runner.Start(req)
	if err != nil {
		h.logger.Error("Failed to start enrichment job", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to start enrichment job")
	}

	status := http.StatusAccepted
	if alreadyRunning {
		status = http.StatusConflict
	}
	return c.JSON(status, models.StartJobResponse{
		JobID:          job.ID,
		Status:         job.Status,
		AlreadyRunning: alreadyRunning,
	})
}

// GetJob handles GET /api/commands/enrich/:jobId and returns the full
// progress snapshot.
func (h *CommandHandler) GetJob(c echo.Context) error {
	job, err := h.jobs.Get(c.Param("jobId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "job not found")
		}
		h.logger.Error("Failed to load enrichment job", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to load job")
	}
	return c.JSON(http.StatusOK, job)
}

// CancelJob handles POST /api/commands/enrich/:jobId/cancel. The 202 answer
// reflects that cancellation is a request the runner honors at its next
// checkpoint, not an instantaneous stop.
func (h *CommandHandler) CancelJob(c echo.Context) error {
	job, err := h.jobs.RequestCancel(c.Param("jobId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "job not found")
		}
		h.logger.Error("Failed to request job cancellation", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to cancel job")
	}
	return c.JSON(http.StatusAccepted, models.CancelJobResponse{
		ID:              job.ID,
		Status:          job.Status,
		CancelRequested: job.CancelRequested,
	})
}

// GetCard handles GET /api/commands/:cmdlet (case-insensitive).
func (h *CommandHandler) GetCard(c echo.Context) error {
	name := c.Param("cmdlet")
	if !utils.IsValidCmdletName(name) {
		return errorJSON(c, http.StatusBadRequest, "invalid cmdlet name")
	}

	ctx := c.Request().Context()
	if h.cache != nil {
		if card, ok := h.cache.Get(ctx, name); ok {
			return c.JSON(http.StatusOK, card)
		}
	}

	card, err := h.cards.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, http.StatusNotFound, "cmdlet not enriched")
		}
		h.logger.Error("Failed to load cmdlet card", zap.String("cmdlet", name), zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to load cmdlet card")
	}

	if h.cache != nil {
		h.cache.Set(ctx, card)
	}
	return c.JSON(http.StatusOK, card)
}

// RegisterCommand handles POST /api/commands. The script importer calls this
// for every cmdlet it sees in use; registration is idempotent by name, so
// repeated imports of the same script are harmless.
func (h *CommandHandler) RegisterCommand(c echo.Context) error {
	var req models.RegisterCmdletRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if !utils.IsValidCmdletName(req.Name) {
		return errorJSON(c, http.StatusBadRequest, "invalid cmdlet name")
	}

	cmdlet, err := h.inventory.UpsertByName(req.Name, req.Module)
	if err != nil {
		h.logger.Error("Failed to register cmdlet", zap.String("cmdlet", req.Name), zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to register cmdlet")
	}
	return c.JSON(http.StatusCreated, cmdlet)
}

// ListCommands handles GET /api/commands with limit/page/q pagination.
func (h *CommandHandler) ListCommands(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	page := queryInt(c, "page", 1)
	search := c.QueryParam("q")

	entries, total, err := h.inventory.ListInventory(limit, page, search)
	if err != nil {
		h.logger.Error("Failed to list commands", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to list commands")
	}
	return c.JSON(http.StatusOK, paginatedResponse(entries, total, page, limit))
}
