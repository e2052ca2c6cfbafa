package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"
	"gymkeeper/gym-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("catalog exercise not found")
	ErrExerciseNameTaken    = errors.New("catalog exercise with this name already exists")
	ErrExerciseValidation   = errors.New("catalog exercise validation failed")
	ErrExerciseImageLimit   = errors.New("catalog exercise already has the maximum number of images")
	ErrExerciseAccessDenied = errors.New("access denied to modify this catalog exercise")
	ErrUnsupportedImageType = errors.New("unsupported image content type")
)

// ImageUploadTicket carries a presigned PUT URL plus the object key the
// client must confirm with AttachImage after uploading.
type ImageUploadTicket struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

// CatalogService maintains the canonical exercise catalog. Edits here never
// reach existing snapshots; removal is restricted while templates reference
// the entry and otherwise nulls the informational back-reference on old
// snapshot rows.
type CatalogService interface {
	CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name string, muscleGroup domain.MuscleGroup, instructions string) (*domain.CatalogExercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.CatalogExercise, error)
	ListExercises(ctx context.Context, activeOnly bool) ([]domain.CatalogExercise, error)
	UpdateExercise(ctx context.Context, trainerID, id primitive.ObjectID, name string, muscleGroup domain.MuscleGroup, instructions string) (*domain.CatalogExercise, error)
	DeleteExercise(ctx context.Context, trainerID, id primitive.ObjectID) error

	RequestImageUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*ImageUploadTicket, error)
	AttachImage(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.CatalogExercise, error)
	RemoveImage(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.CatalogExercise, error)
	ResolveImageURLs(ctx context.Context, exercise *domain.CatalogExercise) ([]string, error)
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	catalogRepo    repository.CatalogRepository
	templateRepo   repository.TemplateRepository
	assignmentRepo repository.AssignmentRepository
	fileStorage    storage.FileStorage
}

// NewCatalogService creates a new instance of catalogService.
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	templateRepo repository.TemplateRepository,
	assignmentRepo repository.AssignmentRepository,
	fileStorage storage.FileStorage,
) CatalogService {
	return &catalogService{
		catalogRepo:    catalogRepo,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		fileStorage:    fileStorage,
	}
}

// CreateExercise adds a new canonical exercise to the catalog.
func (s *catalogService) CreateExercise(ctx context.Context, trainerID primitive.ObjectID, name string, muscleGroup domain.MuscleGroup, instructions string) (*domain.CatalogExercise, error) {
	// 1. Validate Inputs
	if trainerID == primitive.NilObjectID || name == "" {
		return nil, ErrExerciseValidation
	}
	if !domain.ValidMuscleGroup(muscleGroup) {
		return nil, ErrExerciseValidation
	}

	// 2. Names are globally unique across the catalog
	if _, err := s.catalogRepo.GetByName(ctx, name); err == nil {
		return nil, ErrExerciseNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 3. Insert
	exercise := &domain.CatalogExercise{
		TrainerID:    trainerID,
		Name:         name,
		MuscleGroup:  muscleGroup,
		Instructions: instructions,
		Active:       true,
	}
	exerciseID, err := s.catalogRepo.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// GetExercise retrieves a single catalog exercise.
func (s *catalogService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.CatalogExercise, error) {
	exercise, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ListExercises retrieves the catalog, name ascending.
func (s *catalogService) ListExercises(ctx context.Context, activeOnly bool) ([]domain.CatalogExercise, error) {
	return s.catalogRepo.List(ctx, activeOnly)
}

// UpdateExercise edits a catalog entry. Existing snapshots keep the values
// they copied at assignment time.
func (s *catalogService) UpdateExercise(ctx context.Context, trainerID, id primitive.ObjectID, name string, muscleGroup domain.MuscleGroup, instructions string) (*domain.CatalogExercise, error) {
	if name == "" || !domain.ValidMuscleGroup(muscleGroup) {
		return nil, ErrExerciseValidation
	}

	exercise, err := s.getOwnedExercise(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}

	// Renaming must not collide with another entry
	if name != exercise.Name {
		if other, err := s.catalogRepo.GetByName(ctx, name); err == nil && other.ID != id {
			return nil, ErrExerciseNameTaken
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	exercise.Name = name
	exercise.MuscleGroup = muscleGroup
	exercise.Instructions = instructions

	if err := s.catalogRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrExerciseNameTaken
		}
		return nil, err
	}
	return exercise, nil
}

// DeleteExercise removes a catalog entry. While any template day still
// references it the entry is only deactivated (restrict-delete); once
// unreferenced it is physically removed and the informational back-reference
// on old snapshot rows is nulled.
func (s *catalogService) DeleteExercise(ctx context.Context, trainerID, id primitive.ObjectID) error {
	exercise, err := s.getOwnedExercise(ctx, trainerID, id)
	if err != nil {
		return err
	}

	refs, err := s.templateRepo.CountByCatalogExercise(ctx, exercise.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return s.catalogRepo.Deactivate(ctx, exercise.ID)
	}

	if err := s.catalogRepo.Delete(ctx, exercise.ID); err != nil {
		return err
	}
	// Set-null-on-delete for snapshots that copied from this entry. Their
	// display data is their own; only the link goes away.
	return s.assignmentRepo.UnsetCatalogReference(ctx, exercise.ID)
}

// === Images ===

// RequestImageUpload hands out a presigned PUT URL for one reference image.
func (s *catalogService) RequestImageUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*ImageUploadTicket, error) {
	exercise, err := s.getOwnedExercise(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}
	if len(exercise.ImageKeys) >= domain.MaxExerciseImages {
		return nil, ErrExerciseImageLimit
	}

	ext, err := imageExtension(contentType)
	if err != nil {
		return nil, err
	}
	objectKey := fmt.Sprintf("catalog/%s/%s%s", exerciseID.Hex(), uuid.NewString(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &ImageUploadTicket{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}

// AttachImage records an uploaded object as one of the exercise's images.
func (s *catalogService) AttachImage(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.CatalogExercise, error) {
	exercise, err := s.getOwnedExercise(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}
	if len(exercise.ImageKeys) >= domain.MaxExerciseImages {
		return nil, ErrExerciseImageLimit
	}
	if !strings.HasPrefix(objectKey, "catalog/"+exerciseID.Hex()+"/") {
		return nil, ErrExerciseValidation
	}
	for _, key := range exercise.ImageKeys {
		if key == objectKey {
			return exercise, nil
		}
	}

	exercise.ImageKeys = append(exercise.ImageKeys, objectKey)
	if err := s.catalogRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// RemoveImage detaches an image and deletes the stored object. Snapshots
// that copied the key keep it; presigned resolution simply fails for them
// afterwards, the snapshot row itself is untouched.
func (s *catalogService) RemoveImage(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.CatalogExercise, error) {
	exercise, err := s.getOwnedExercise(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, err
	}

	kept := exercise.ImageKeys[:0]
	found := false
	for _, key := range exercise.ImageKeys {
		if key == objectKey {
			found = true
			continue
		}
		kept = append(kept, key)
	}
	if !found {
		return nil, ErrExerciseValidation
	}
	exercise.ImageKeys = kept

	if err := s.catalogRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
		return nil, err
	}
	return exercise, nil
}

// ResolveImageURLs turns the exercise's stored object keys into presigned
// GET URLs for display.
func (s *catalogService) ResolveImageURLs(ctx context.Context, exercise *domain.CatalogExercise) ([]string, error) {
	urls := make([]string, 0, len(exercise.ImageKeys))
	for _, key := range exercise.ImageKeys {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// getOwnedExercise loads an exercise and verifies trainer ownership.
func (s *catalogService) getOwnedExercise(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.CatalogExercise, error) {
	if trainerID == primitive.NilObjectID || id == primitive.NilObjectID {
		return nil, ErrExerciseValidation
	}
	exercise, err := s.catalogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.TrainerID != trainerID {
		return nil, ErrExerciseAccessDenied
	}
	return exercise, nil
}

// imageExtension maps an image content type to a file extension for the
// object key.
func imageExtension(contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedImageType
	}
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return "", ErrUnsupportedImageType
	}
	return exts[0], nil
}
