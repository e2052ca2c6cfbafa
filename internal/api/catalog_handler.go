package api

import (
	"errors"
	"net/http"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- DTOs ---

type CatalogExerciseRequest struct {
	Name         string             `json:"name" binding:"required"`
	MuscleGroup  domain.MuscleGroup `json:"muscleGroup" binding:"required"`
	Instructions string             `json:"instructions"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type AttachImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

type CatalogExerciseResponse struct {
	Exercise  domain.CatalogExercise `json:"exercise"`
	ImageURLs []string               `json:"imageUrls,omitempty"`
}

// CreateExercise adds a new entry to the exercise catalog.
func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	var req CatalogExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), trainerID, req.Name, req.MuscleGroup, req.Instructions)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises returns the catalog, optionally including deactivated entries.
func (h *CatalogHandler) ListExercises(c *gin.Context) {
	activeOnly := c.Query("includeInactive") != "true"

	exercises, err := h.catalogService.ListExercises(c.Request.Context(), activeOnly)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list catalog exercises.")
		return
	}
	if exercises == nil {
		exercises = []domain.CatalogExercise{}
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise returns one catalog entry with resolved image URLs.
func (h *CatalogHandler) GetExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	exercise, err := h.catalogService.GetExercise(c.Request.Context(), exerciseID)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}

	urls, err := h.catalogService.ResolveImageURLs(c.Request.Context(), exercise)
	if err != nil {
		// Image resolution failure should not hide the exercise itself
		urls = nil
	}
	c.JSON(http.StatusOK, CatalogExerciseResponse{Exercise: *exercise, ImageURLs: urls})
}

// UpdateExercise edits a catalog entry.
func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req CatalogExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.UpdateExercise(c.Request.Context(), trainerID, exerciseID, req.Name, req.MuscleGroup, req.Instructions)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise removes or deactivates a catalog entry depending on
// whether templates still reference it.
func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestImageUpload returns a presigned PUT URL for a new reference image.
func (h *CatalogHandler) RequestImageUpload(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticket, err := h.catalogService.RequestImageUpload(c.Request.Context(), trainerID, exerciseID, req.ContentType)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// AttachImage confirms an uploaded object as one of the exercise's images.
func (h *CatalogHandler) AttachImage(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req AttachImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.AttachImage(c.Request.Context(), trainerID, exerciseID, req.ObjectKey)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// RemoveImage detaches and deletes a reference image.
func (h *CatalogHandler) RemoveImage(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req AttachImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.RemoveImage(c.Request.Context(), trainerID, exerciseID, req.ObjectKey)
	if err != nil {
		h.mapCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// mapCatalogError maps catalog service errors to HTTP status codes.
func (h *CatalogHandler) mapCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseNameTaken):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrExerciseValidation),
		errors.Is(err, service.ErrExerciseImageLimit),
		errors.Is(err, service.ErrUnsupportedImageType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Catalog operation failed.")
	}
}

// currentUserID extracts and parses the authenticated user's ID,
// aborting the request on failure.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
