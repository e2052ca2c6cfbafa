package api

import (
	"errors"
	"net/http"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// --- DTOs ---

type AssignTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
	Month      string `json:"month" binding:"required"` // "YYYY-MM"
	Notes      string `json:"notes"`
}

type AssignTemplateResponse struct {
	Assignment *domain.Assignment `json:"assignment"`
	// PriorLoggedCount is how many log entries existed under the snapshot of
	// the assignment this one replaced. Zero when nothing was replaced.
	// Callers use it to warn that history for this month lives on under the
	// previous plan.
	PriorLoggedCount int64 `json:"priorLoggedCount"`
}

// AssignTemplate binds a template to a participant for a month, freezing a
// snapshot of the template's current structure. An existing active
// assignment for that participant+month is deactivated, never deleted.
func (h *AssignmentHandler) AssignTemplate(c *gin.Context) {
	participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid participant ID format.")
		return
	}

	var req AssignTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}
	month, err := domain.ParseMonth(req.Month)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.assignmentService.AssignTemplate(c.Request.Context(), trainerID, participantID, templateID, month, req.Notes)
	if err != nil {
		h.mapAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AssignTemplateResponse{
		Assignment:       result.Assignment,
		PriorLoggedCount: result.PriorLoggedCount,
	})
}

// GetActiveAssignment returns the active assignment for a participant+month
// with its full snapshot tree. 200 with an empty body object when none
// exists: absence of a plan is a normal state.
func (h *AssignmentHandler) GetActiveAssignment(c *gin.Context) {
	participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid participant ID format.")
		return
	}
	month, err := domain.ParseMonth(c.Query("month"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if !h.authorizeParticipantAccess(c, participantID) {
		return
	}

	plan, err := h.assignmentService.GetActiveAssignment(c.Request.Context(), participantID, month)
	if err != nil {
		h.mapAssignmentError(c, err)
		return
	}
	if plan == nil {
		c.JSON(http.StatusOK, gin.H{"assignment": nil})
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetAssignmentHistory returns every assignment a participant has had,
// newest month first, without expanding snapshot trees.
func (h *AssignmentHandler) GetAssignmentHistory(c *gin.Context) {
	participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid participant ID format.")
		return
	}

	if !h.authorizeParticipantAccess(c, participantID) {
		return
	}

	history, err := h.assignmentService.GetAssignmentHistory(c.Request.Context(), participantID)
	if err != nil {
		h.mapAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// authorizeParticipantAccess lets trainers read any participant and
// participants read only themselves.
func (h *AssignmentHandler) authorizeParticipantAccess(c *gin.Context, participantID primitive.ObjectID) bool {
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return false
	}
	if role == domain.RoleTrainer {
		return true
	}

	callerID, ok := currentUserID(c)
	if !ok {
		return false
	}
	if callerID != participantID {
		abortWithError(c, http.StatusForbidden, "Participants may only access their own assignments.")
		return false
	}
	return true
}

// mapAssignmentError maps assignment service errors to HTTP status codes.
func (h *AssignmentHandler) mapAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrParticipantNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidMonth):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Assignment operation failed.")
	}
}
