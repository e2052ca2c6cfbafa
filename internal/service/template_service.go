package service

import (
	"context"
	"errors"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateAccessDenied  = errors.New("access denied to modify this template")
	ErrTemplateValidation    = errors.New("template validation failed")
	ErrTemplateDayNotFound   = errors.New("template day not found")
	ErrDuplicateDayNumber    = errors.New("template already has a day with this number")
	ErrDayExerciseNotFound   = errors.New("template day exercise not found")
	ErrDuplicatePosition     = errors.New("day already has an exercise at this position")
	ErrCatalogExerciseNeeded = errors.New("referenced catalog exercise not found or inactive")
)

// TemplateService maintains reusable workout templates and their day /
// exercise tree. Templates are freely editable; already-taken snapshots are
// unaffected by any edit here.
type TemplateService interface {
	CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, name, category, description, difficulty string) (*domain.Template, error)
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.TemplateWithDays, error)
	ListTemplatesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error)
	UpdateTemplate(ctx context.Context, trainerID, id primitive.ObjectID, name, category, description, difficulty string) (*domain.Template, error)
	DeactivateTemplate(ctx context.Context, trainerID, id primitive.ObjectID) error

	AddDay(ctx context.Context, trainerID, templateID primitive.ObjectID, dayNumber int, name, description string) (*domain.TemplateDay, error)
	UpdateDay(ctx context.Context, trainerID, dayID primitive.ObjectID, dayNumber int, name, description string) (*domain.TemplateDay, error)
	RemoveDay(ctx context.Context, trainerID, dayID primitive.ObjectID) error

	AddExerciseToDay(ctx context.Context, trainerID, dayID, catalogExerciseID primitive.ObjectID, position, sets int, reps, notes string) (*domain.TemplateDayExercise, error)
	UpdateDayExercise(ctx context.Context, trainerID, id primitive.ObjectID, position, sets int, reps, notes string) (*domain.TemplateDayExercise, error)
	RemoveDayExercise(ctx context.Context, trainerID, id primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
	catalogRepo  repository.CatalogRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	catalogRepo repository.CatalogRepository,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		catalogRepo:  catalogRepo,
	}
}

// === Templates ===

// CreateTemplate creates a new, initially empty template.
func (s *templateService) CreateTemplate(ctx context.Context, trainerID primitive.ObjectID, name, category, description, difficulty string) (*domain.Template, error) {
	if trainerID == primitive.NilObjectID || name == "" {
		return nil, ErrTemplateValidation
	}

	template := &domain.Template{
		TrainerID:   trainerID,
		Name:        name,
		Category:    category,
		Description: description,
		Difficulty:  difficulty,
		Active:      true,
	}
	templateID, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = templateID
	return template, nil
}

// GetTemplate retrieves the full template tree: days ascending, exercises in
// position order.
func (s *templateService) GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.TemplateWithDays, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	days, err := s.templateRepo.GetDays(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &domain.TemplateWithDays{
		Template: *template,
		Days:     make([]domain.TemplateDayFull, 0, len(days)),
	}
	for _, day := range days {
		exercises, err := s.templateRepo.GetDayExercises(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		result.Days = append(result.Days, domain.TemplateDayFull{
			Day:       day,
			Exercises: exercises,
		})
	}
	return result, nil
}

// ListTemplatesByTrainer retrieves a trainer's templates, newest first.
func (s *templateService) ListTemplatesByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	if trainerID == primitive.NilObjectID {
		return nil, ErrTemplateValidation
	}
	return s.templateRepo.GetByTrainerID(ctx, trainerID)
}

// UpdateTemplate edits a template's display fields.
func (s *templateService) UpdateTemplate(ctx context.Context, trainerID, id primitive.ObjectID, name, category, description, difficulty string) (*domain.Template, error) {
	if name == "" {
		return nil, ErrTemplateValidation
	}

	template, err := s.getOwnedTemplate(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}

	template.Name = name
	template.Category = category
	template.Description = description
	template.Difficulty = difficulty

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeactivateTemplate retires a template from new assignments. Existing
// assignments and their snapshots are untouched.
func (s *templateService) DeactivateTemplate(ctx context.Context, trainerID, id primitive.ObjectID) error {
	if _, err := s.getOwnedTemplate(ctx, trainerID, id); err != nil {
		return err
	}
	return s.templateRepo.Deactivate(ctx, id)
}

// === Days ===

// AddDay appends a training day. Day numbers are unique within a template.
func (s *templateService) AddDay(ctx context.Context, trainerID, templateID primitive.ObjectID, dayNumber int, name, description string) (*domain.TemplateDay, error) {
	if dayNumber < 1 || name == "" {
		return nil, ErrTemplateValidation
	}
	if _, err := s.getOwnedTemplate(ctx, trainerID, templateID); err != nil {
		return nil, err
	}

	day := &domain.TemplateDay{
		TemplateID:  templateID,
		DayNumber:   dayNumber,
		Name:        name,
		Description: description,
	}
	dayID, err := s.templateRepo.AddDay(ctx, day)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateDayNumber
		}
		return nil, err
	}
	day.ID = dayID
	return day, nil
}

// UpdateDay edits a day's number and display fields.
func (s *templateService) UpdateDay(ctx context.Context, trainerID, dayID primitive.ObjectID, dayNumber int, name, description string) (*domain.TemplateDay, error) {
	if dayNumber < 1 || name == "" {
		return nil, ErrTemplateValidation
	}

	day, err := s.getOwnedDay(ctx, trainerID, dayID)
	if err != nil {
		return nil, err
	}

	day.DayNumber = dayNumber
	day.Name = name
	day.Description = description

	if err := s.templateRepo.UpdateDay(ctx, day); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateDayNumber
		}
		return nil, err
	}
	return day, nil
}

// RemoveDay deletes a day and its exercises. Snapshots taken from it are
// unaffected.
func (s *templateService) RemoveDay(ctx context.Context, trainerID, dayID primitive.ObjectID) error {
	if _, err := s.getOwnedDay(ctx, trainerID, dayID); err != nil {
		return err
	}
	if err := s.templateRepo.DeleteDayExercisesByDay(ctx, dayID); err != nil {
		return err
	}
	return s.templateRepo.DeleteDay(ctx, dayID)
}

// === Day exercises ===

// AddExerciseToDay places a catalog exercise into a day. The catalog entry
// must exist and be active; positions are unique within the day.
func (s *templateService) AddExerciseToDay(ctx context.Context, trainerID, dayID, catalogExerciseID primitive.ObjectID, position, sets int, reps, notes string) (*domain.TemplateDayExercise, error) {
	if position < 1 || sets < 0 {
		return nil, ErrTemplateValidation
	}

	day, err := s.getOwnedDay(ctx, trainerID, dayID)
	if err != nil {
		return nil, err
	}

	catalogExercise, err := s.catalogRepo.GetByID(ctx, catalogExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCatalogExerciseNeeded
		}
		return nil, err
	}
	if !catalogExercise.Active {
		return nil, ErrCatalogExerciseNeeded
	}

	exercise := &domain.TemplateDayExercise{
		TemplateDayID:     dayID,
		TemplateID:        day.TemplateID,
		CatalogExerciseID: catalogExerciseID,
		Position:          position,
		Sets:              sets,
		Reps:              reps,
		Notes:             notes,
	}
	exerciseID, err := s.templateRepo.AddDayExercise(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePosition
		}
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

// UpdateDayExercise edits the per-template overrides of a day exercise.
func (s *templateService) UpdateDayExercise(ctx context.Context, trainerID, id primitive.ObjectID, position, sets int, reps, notes string) (*domain.TemplateDayExercise, error) {
	if position < 1 || sets < 0 {
		return nil, ErrTemplateValidation
	}

	exercise, err := s.getOwnedDayExercise(ctx, trainerID, id)
	if err != nil {
		return nil, err
	}

	exercise.Position = position
	exercise.Sets = sets
	exercise.Reps = reps
	exercise.Notes = notes

	if err := s.templateRepo.UpdateDayExercise(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePosition
		}
		return nil, err
	}
	return exercise, nil
}

// RemoveDayExercise deletes a single day exercise.
func (s *templateService) RemoveDayExercise(ctx context.Context, trainerID, id primitive.ObjectID) error {
	if _, err := s.getOwnedDayExercise(ctx, trainerID, id); err != nil {
		return err
	}
	return s.templateRepo.DeleteDayExercise(ctx, id)
}

// === Ownership helpers ===

func (s *templateService) getOwnedTemplate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.Template, error) {
	if trainerID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, ErrTemplateValidation
	}
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.TrainerID != trainerID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}

func (s *templateService) getOwnedDay(ctx context.Context, trainerID, dayID primitive.ObjectID) (*domain.TemplateDay, error) {
	day, err := s.templateRepo.GetDay(ctx, dayID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateDayNotFound
		}
		return nil, err
	}
	if _, err := s.getOwnedTemplate(ctx, trainerID, day.TemplateID); err != nil {
		return nil, err
	}
	return day, nil
}

func (s *templateService) getOwnedDayExercise(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.TemplateDayExercise, error) {
	exercise, err := s.templateRepo.GetDayExercise(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDayExerciseNotFound
		}
		return nil, err
	}
	if _, err := s.getOwnedTemplate(ctx, trainerID, exercise.TemplateID); err != nil {
		return nil, err
	}
	return exercise, nil
}
