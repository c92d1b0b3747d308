package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"podscribe/internal/api/middleware"
	"podscribe/internal/api/v1/dto"
	"podscribe/internal/api/v1/services"
	"podscribe/internal/app/model"
)

// streamInterval is the poll period behind the SSE realization of the
// progress read. The bus only guarantees latest-value semantics, so a
// faster period would not observe more.
const streamInterval = time.Second

// JobHandler handles transcription job HTTP requests
type JobHandler struct {
	jobService services.JobService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// Submit creates a new transcription job and returns its id.
func (h *JobHandler) Submit(c *gin.Context) {
	var req dto.SubmitJobRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp, err := h.jobService.Submit(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    400,
			Message: "Failed to create job: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Code:    0,
		Data:    resp,
		Message: "Job created",
	})
}

// Get returns the job's lifecycle state.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    404,
			Message: "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Code: 0, Data: job})
}

// Progress returns the latest per-step snapshot for polling clients.
func (h *JobHandler) Progress(c *gin.Context) {
	snapshot, err := h.jobService.Progress(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    404,
			Message: "Job not found",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Code: 0, Data: snapshot})
}

// Events streams progress snapshots as server-sent events until the
// job turns terminal. A client disconnect only stops observation, not
// the job.
func (h *JobHandler) Events(c *gin.Context) {
	jobID := c.Param("id")
	if _, err := h.jobService.Progress(jobID); err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    404,
			Message: "Job not found",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		snapshot, err := h.jobService.Progress(jobID)
		if err != nil {
			// Evicted mid-stream.
			return false
		}
		c.SSEvent("progress", snapshot)
		if snapshot.Complete {
			return false
		}
		select {
		case <-ticker.C:
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// Result returns the terminal result: 200 once complete, 202 while
// still processing, 410 with the failure message for failed jobs.
func (h *JobHandler) Result(c *gin.Context) {
	result, state, err := h.jobService.Result(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Code:    404,
			Message: "Job not found",
		})
		return
	}

	switch {
	case state == model.StateComplete:
		c.JSON(http.StatusOK, dto.SuccessResponse{Code: 0, Data: result})
	case state == model.StateFailed:
		job, _ := h.jobService.Get(c.Param("id"))
		msg := "job failed"
		if job != nil && job.Error != "" {
			msg = job.Error
		}
		c.JSON(http.StatusGone, dto.ErrorResponse{
			Code:    410,
			Message: "Job failed",
			Error:   msg,
		})
	default:
		c.JSON(http.StatusAccepted, dto.SuccessResponse{
			Code:    0,
			Message: "Still processing",
		})
	}
}

// Delete evicts a terminal job after result retrieval.
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobService.Cleanup(c.Param("id")); err != nil {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Code:    409,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Code: 0, Message: "Job removed"})
}
