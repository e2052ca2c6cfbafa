package api

import (
	"errors"
	"net/http"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

type TemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

type TemplateDayRequest struct {
	DayNumber   int    `json:"dayNumber" binding:"required,min=1"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type DayExerciseRequest struct {
	CatalogExerciseID string `json:"catalogExerciseId" binding:"required"`
	Position          int    `json:"position" binding:"required,min=1"`
	Sets              int    `json:"sets" binding:"min=0"`
	Reps              string `json:"reps"`
	Notes             string `json:"notes"`
}

type DayExerciseUpdateRequest struct {
	Position int    `json:"position" binding:"required,min=1"`
	Sets     int    `json:"sets" binding:"min=0"`
	Reps     string `json:"reps"`
	Notes    string `json:"notes"`
}

// CreateTemplate creates a new empty template.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), trainerID, req.Name, req.Category, req.Description, req.Difficulty)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

// ListTemplates returns the authenticated trainer's templates.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplatesByTrainer(c.Request.Context(), trainerID)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate returns the full template tree.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// UpdateTemplate edits a template's display fields.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), trainerID, templateID, req.Name, req.Category, req.Description, req.Difficulty)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeactivateTemplate retires a template from new assignments.
func (h *TemplateHandler) DeactivateTemplate(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.templateService.DeactivateTemplate(c.Request.Context(), trainerID, templateID); err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddDay appends a training day to a template.
func (h *TemplateHandler) AddDay(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	var req TemplateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	day, err := h.templateService.AddDay(c.Request.Context(), trainerID, templateID, req.DayNumber, req.Name, req.Description)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, day)
}

// UpdateDay edits a template day.
func (h *TemplateHandler) UpdateDay(c *gin.Context) {
	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	var req TemplateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	day, err := h.templateService.UpdateDay(c.Request.Context(), trainerID, dayID, req.DayNumber, req.Name, req.Description)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// RemoveDay deletes a day and its exercises.
func (h *TemplateHandler) RemoveDay(c *gin.Context) {
	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.templateService.RemoveDay(c.Request.Context(), trainerID, dayID); err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExerciseToDay places a catalog exercise into a day.
func (h *TemplateHandler) AddExerciseToDay(c *gin.Context) {
	dayID, err := primitive.ObjectIDFromHex(c.Param("dayId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day ID format.")
		return
	}

	var req DayExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	catalogExerciseID, err := primitive.ObjectIDFromHex(req.CatalogExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid catalog exercise ID format.")
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.templateService.AddExerciseToDay(c.Request.Context(), trainerID, dayID, catalogExerciseID, req.Position, req.Sets, req.Reps, req.Notes)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// UpdateDayExercise edits the per-template overrides of a day exercise.
func (h *TemplateHandler) UpdateDayExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day exercise ID format.")
		return
	}

	var req DayExerciseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.templateService.UpdateDayExercise(c.Request.Context(), trainerID, exerciseID, req.Position, req.Sets, req.Reps, req.Notes)
	if err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// RemoveDayExercise deletes a single day exercise.
func (h *TemplateHandler) RemoveDayExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid day exercise ID format.")
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.templateService.RemoveDayExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		h.mapTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// mapTemplateError maps template service errors to HTTP status codes.
func (h *TemplateHandler) mapTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrTemplateDayNotFound),
		errors.Is(err, service.ErrDayExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDuplicateDayNumber),
		errors.Is(err, service.ErrDuplicatePosition):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTemplateValidation),
		errors.Is(err, service.ErrCatalogExerciseNeeded):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Template operation failed.")
	}
}
