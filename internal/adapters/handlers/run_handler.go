package handlers

import (
	"net/http"

	"github.com/ssbtech/hilService/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// ListKeywords returns every keyword schema known to the service.
// @Summary List keyword schemas
// @Tags Keywords
// @Produce json
// @Success 200 {object} map[string]interface{} "Keyword schemas"
// @Router /keywords [get]
func (h *Handler) ListKeywords(c *gin.Context) {
	schemas := h.usecase.ListKeywords()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "keywords": schemas})
}

// StartRun validates a test case, generates its script and starts execution.
// @Summary Start a test run
// @Description Validates every keyword call up front, generates the script and launches the run in the background. Returns the run id immediately.
// @Tags Runs
// @Accept json
// @Produce json
// @Param input body models.RunRequest true "Test case definition"
// @Success 200 {object} models.StartRunResponse "Run accepted"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 409 {object} models.ErrorResponse "Another run is active"
// @Router /runs/start [post]
func (h *Handler) StartRun(c *gin.Context) {
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	runID, err := h.usecase.StartRun(req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "run_id": runID})
}

// CancelRun requests cooperative cancellation of an active run.
// @Summary Cancel a run
// @Description Cancellation takes effect at the next keyword boundary. Finished keywords keep their recorded outcomes.
// @Tags Runs
// @Accept json
// @Produce json
// @Param input body models.RunCancelRequest true "Run id"
// @Success 200 {object} models.MessageResponse "Cancellation requested"
// @Failure 400 {object} models.ErrorResponse "Run already finished"
// @Failure 404 {object} models.ErrorResponse "Unknown run id"
// @Router /runs/cancel [post]
func (h *Handler) CancelRun(c *gin.Context) {
	var req models.RunCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err, "Invalid request payload")
		return
	}

	if err := h.usecase.CancelRun(req.RunID); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "cancellation requested"})
}

// RunResult returns the live or terminal result of a run.
// @Summary Get run result
// @Tags Runs
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.RunResult "Run result snapshot"
// @Failure 404 {object} models.ErrorResponse "Unknown run id"
// @Router /runs/{id} [get]
func (h *Handler) RunResult(c *gin.Context) {
	result, err := h.usecase.RunResult(c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "result": result})
}

// RunReport returns the aggregated report of a run.
// @Summary Get run report
// @Tags Runs
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} models.RunReport "Aggregated run report"
// @Failure 404 {object} models.ErrorResponse "Unknown run id"
// @Router /runs/{id}/report [get]
func (h *Handler) RunReport(c *gin.Context) {
	report, err := h.usecase.RunReport(c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "report": report})
}

// RunHistory returns the persisted history of finished runs.
// @Summary List run history
// @Tags Runs
// @Produce json
// @Success 200 {object} map[string]interface{} "Persisted run records"
// @Router /runs [get]
func (h *Handler) RunHistory(c *gin.Context) {
	runs, err := h.usecase.RunHistory()
	if err != nil {
		h.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "runs": runs})
}
