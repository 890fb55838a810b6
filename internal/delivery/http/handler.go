package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/internal/domain"
	"github.com/pantrybase/ingredients/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver       *usecase.Resolver
	matches        domain.MatchStore
	dedupThreshold float64
	log            *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver *usecase.Resolver, matches domain.MatchStore, dedupThreshold float64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		resolver:       resolver,
		matches:        matches,
		dedupThreshold: dedupThreshold,
		log:            log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ingredients",
		"version": "1.0.0",
	})
}

// resolveRequest is the body of POST /api/v1/ingredients/resolve
type resolveRequest struct {
	Mentions []string `json:"mentions" binding:"required"`
}

// resolveResponse aggregates per-mention outcomes for import routing
type resolveResponse struct {
	Outcomes    []domain.Resolution `json:"outcomes"`
	NeedsReview bool                `json:"needsReview"`
}

// ResolveMentions resolves a batch of free-text ingredient mentions against
// the catalog. Lookup faults become needs-review outcomes, never 5xx.
func (h *Handler) ResolveMentions(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mentions array is required"})
		return
	}
	if len(req.Mentions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mentions array must not be empty"})
		return
	}

	outcomes := h.resolver.ResolveMentions(c.Request.Context(), req.Mentions)
	c.JSON(http.StatusOK, resolveResponse{
		Outcomes:    outcomes,
		NeedsReview: domain.AnyNeedsReview(outcomes),
	})
}

// confirmRequest is the body of POST /api/v1/matches/confirm
type confirmRequest struct {
	Text         string `json:"text" binding:"required"`
	IngredientID string `json:"ingredientId" binding:"required"`
}

// ConfirmMatch records a human confirmation for a mention. From then on the
// resolver's cached tier returns this ingredient regardless of catalog state.
func (h *Handler) ConfirmMatch(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text and ingredientId are required"})
		return
	}

	normalized := usecase.NormalizeMention(req.Text)
	if normalized == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text normalizes to an empty key"})
		return
	}

	if err := h.matches.Confirm(c.Request.Context(), normalized, req.IngredientID); err != nil {
		h.log.Error("confirm match failed", zap.String("normalized", normalized), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist confirmation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"normalizedText": normalized, "ingredientId": req.IngredientID})
}

// dedupeRequest is the body of POST /api/v1/catalog/dedupe
type dedupeRequest struct {
	Records   []domain.ScrapedRecord `json:"records" binding:"required"`
	Threshold float64                `json:"threshold"`
}

// dedupeResponse carries the merged records plus the run summary
type dedupeResponse struct {
	Records []domain.ScrapedRecord `json:"records"`
	Summary usecase.DedupSummary   `json:"summary"`
}

// DedupeRecords merges a batch of scraped records. Pure: nothing is written;
// the offline pipeline owns snapshot persistence.
func (h *Handler) DedupeRecords(c *gin.Context) {
	var req dedupeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records array is required"})
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.dedupThreshold
	}
	if threshold < 0 || threshold > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be in [0,1]"})
		return
	}

	dedup := usecase.NewDeduplicator(threshold, h.log)
	records, summary := dedup.Deduplicate(req.Records)
	c.JSON(http.StatusOK, dedupeResponse{Records: usecase.Categorize(records), Summary: summary})
}
