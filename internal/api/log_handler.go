package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gymkeeper/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LogHandler struct {
	logService      service.TrainingLogService
	progressService service.ProgressService
}

func NewLogHandler(logService service.TrainingLogService, progressService service.ProgressService) *LogHandler {
	return &LogHandler{
		logService:      logService,
		progressService: progressService,
	}
}

// --- DTOs ---

type RecordLogRequest struct {
	SnapshotExerciseID string    `json:"snapshotExerciseId" binding:"required"`
	LogDate            time.Time `json:"logDate"`
	Weight             float64   `json:"weight" binding:"min=0"`
	CompletedSets      int       `json:"completedSets" binding:"min=0"`
	CompletedReps      int       `json:"completedReps" binding:"min=0"`
	Comment            string    `json:"comment"`
}

type UpdateLogRequest struct {
	LogDate       time.Time `json:"logDate"`
	Weight        float64   `json:"weight" binding:"min=0"`
	CompletedSets int       `json:"completedSets" binding:"min=0"`
	CompletedReps int       `json:"completedReps" binding:"min=0"`
	Comment       string    `json:"comment"`
}

// RecordLog inserts a logged entry against a snapshot exercise.
func (h *LogHandler) RecordLog(c *gin.Context) {
	var req RecordLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	snapshotExerciseID, err := primitive.ObjectIDFromHex(req.SnapshotExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid snapshot exercise ID format.")
		return
	}

	participantID, ok := currentUserID(c)
	if !ok {
		return
	}

	entry, err := h.logService.RecordLog(c.Request.Context(), participantID, snapshotExerciseID, req.LogDate, req.Weight, req.CompletedSets, req.CompletedReps, req.Comment)
	if err != nil {
		h.mapLogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateLog mutates an entry's logged values in place.
func (h *LogHandler) UpdateLog(c *gin.Context) {
	logID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid log entry ID format.")
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	participantID, ok := currentUserID(c)
	if !ok {
		return
	}

	entry, err := h.logService.UpdateLog(c.Request.Context(), participantID, logID, req.LogDate, req.Weight, req.CompletedSets, req.CompletedReps, req.Comment)
	if err != nil {
		h.mapLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteLog removes an entry by identity.
func (h *LogHandler) DeleteLog(c *gin.Context) {
	logID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid log entry ID format.")
		return
	}

	participantID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.logService.DeleteLog(c.Request.Context(), participantID, logID); err != nil {
		h.mapLogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetExerciseHistory returns the participant's cross-assignment history for
// the exercise's name bucket, newest first.
func (h *LogHandler) GetExerciseHistory(c *gin.Context) {
	snapshotExerciseID, err := primitive.ObjectIDFromHex(c.Param("snapshotExerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid snapshot exercise ID format.")
		return
	}

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 1 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer.")
			return
		}
	}

	participantID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.progressService.GetExerciseHistory(c.Request.Context(), participantID, snapshotExerciseID, limit)
	if err != nil {
		h.mapLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetLastLog returns the most recent entry for the exercise's name bucket,
// or an empty object when the participant never logged it.
func (h *LogHandler) GetLastLog(c *gin.Context) {
	snapshotExerciseID, err := primitive.ObjectIDFromHex(c.Param("snapshotExerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid snapshot exercise ID format.")
		return
	}

	participantID, ok := currentUserID(c)
	if !ok {
		return
	}

	entry, err := h.progressService.GetLastLog(c.Request.Context(), participantID, snapshotExerciseID)
	if err != nil {
		h.mapLogError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"entry": nil})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// mapLogError maps training log service errors to HTTP status codes.
func (h *LogHandler) mapLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLogEntryNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidLogReference),
		errors.Is(err, service.ErrLogValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLogAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Training log operation failed.")
	}
}
