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
	ErrParticipantNotFound = errors.New("participant not found or inactive")
	ErrTemplateNotFound    = errors.New("template not found or inactive")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentConflict  = errors.New("concurrent assignment for the same participant and month, retry")
	ErrInvalidMonth        = errors.New("invalid target month")
)

// AssignResult is what AssignTemplate hands back to the caller: the new
// assignment and how many log entries already existed under the snapshot of
// the assignment it replaced. The count is informational; it never blocks
// reassignment.
type AssignResult struct {
	Assignment       *domain.Assignment
	PriorLoggedCount int64
}

// AssignmentService binds templates to participants, freezing a denormalized
// snapshot of the template tree at the moment of assignment. Templates stay
// editable afterwards; the snapshot never changes.
type AssignmentService interface {
	AssignTemplate(ctx context.Context, trainerID, participantID, templateID primitive.ObjectID, month domain.Month, notes string) (*AssignResult, error)
	GetActiveAssignment(ctx context.Context, participantID primitive.ObjectID, month domain.Month) (*domain.AssignmentWithPlan, error)
	GetAssignmentHistory(ctx context.Context, participantID primitive.ObjectID) ([]domain.AssignmentSummary, error)
}

// assignmentService implements the AssignmentService interface.
type assignmentService struct {
	userRepo       repository.UserRepository
	templateRepo   repository.TemplateRepository
	catalogRepo    repository.CatalogRepository
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.TrainingLogRepository
	tx             repository.TxRunner
}

// NewAssignmentService creates a new instance of assignmentService.
func NewAssignmentService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	catalogRepo repository.CatalogRepository,
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.TrainingLogRepository,
	tx repository.TxRunner,
) AssignmentService {
	return &assignmentService{
		userRepo:       userRepo,
		templateRepo:   templateRepo,
		catalogRepo:    catalogRepo,
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
		tx:             tx,
	}
}

// AssignTemplate binds a template to a participant for a month. Everything
// from the active-assignment check to the last snapshot row is one atomic
// transaction: on any failure nothing is deactivated and no partial snapshot
// tree is observable.
func (s *assignmentService) AssignTemplate(ctx context.Context, trainerID, participantID, templateID primitive.ObjectID, month domain.Month, notes string) (*AssignResult, error) {
	// 1. Validate Inputs
	if trainerID == primitive.NilObjectID || participantID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, errors.New("trainer ID, participant ID, and template ID are required")
	}
	if err := month.Validate(); err != nil {
		return nil, ErrInvalidMonth
	}

	// 2. Verify the participant exists, is active, and is actually a participant
	participant, err := s.userRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if !participant.IsParticipant() || !participant.Active {
		return nil, ErrParticipantNotFound
	}

	// 3. Verify the template exists and is active
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if !template.Active {
		return nil, ErrTemplateNotFound
	}

	result := &AssignResult{}

	// 4. Deactivate-then-insert plus the whole deep copy, atomically.
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// 4a. Replace any existing active assignment for this participant+month.
		// The prior snapshot tree and its log entries are left untouched.
		existing, err := s.assignmentRepo.FindActiveByParticipantAndMonth(txCtx, participantID, month)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil {
			priorExercises, err := s.assignmentRepo.GetSnapshotExercisesByAssignment(txCtx, existing.ID)
			if err != nil {
				return err
			}
			priorIDs := make([]primitive.ObjectID, len(priorExercises))
			for i, ex := range priorExercises {
				priorIDs[i] = ex.ID
			}
			result.PriorLoggedCount, err = s.logRepo.CountBySnapshotExerciseIDs(txCtx, priorIDs)
			if err != nil {
				return err
			}
			if err := s.assignmentRepo.Deactivate(txCtx, existing.ID); err != nil {
				return err
			}
		}

		// 4b. Insert the new assignment.
		assignment := &domain.Assignment{
			ParticipantID: participantID,
			TemplateID:    templateID,
			TrainerID:     trainerID,
			Month:         month,
			TrainerNotes:  notes,
			Active:        true,
		}
		assignmentID, err := s.assignmentRepo.Create(txCtx, assignment)
		if err != nil {
			return err
		}
		assignment.ID = assignmentID
		result.Assignment = assignment

		// 4c. Deep-copy the template tree as it reads right now.
		return s.copyTemplateTree(txCtx, assignment)
	})
	if err != nil {
		// A duplicate on the partial unique index or a write conflict means
		// another assignment for the same participant+month committed first.
		if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrConflict) {
			return nil, ErrAssignmentConflict
		}
		return nil, err
	}

	return result, nil
}

// copyTemplateTree freezes the template's days and exercises under the new
// assignment, resolving catalog fields at this moment. Later template or
// catalog edits never reach these rows.
func (s *assignmentService) copyTemplateTree(ctx context.Context, assignment *domain.Assignment) error {
	days, err := s.templateRepo.GetDays(ctx, assignment.TemplateID)
	if err != nil {
		return err
	}

	for _, day := range days {
		snapDay := &domain.SnapshotDay{
			AssignmentID: assignment.ID,
			DayNumber:    day.DayNumber,
			Name:         day.Name,
			WeekdayLabel: domain.WeekdayLabelFor(day.DayNumber),
		}
		snapDayID, err := s.assignmentRepo.InsertSnapshotDay(ctx, snapDay)
		if err != nil {
			return err
		}

		dayExercises, err := s.templateRepo.GetDayExercises(ctx, day.ID)
		if err != nil {
			return err
		}
		if len(dayExercises) == 0 {
			continue
		}

		catalogIDs := make([]primitive.ObjectID, len(dayExercises))
		for i, ex := range dayExercises {
			catalogIDs[i] = ex.CatalogExerciseID
		}
		catalog, err := s.catalogRepo.GetByIDs(ctx, catalogIDs)
		if err != nil {
			return err
		}

		snapshots := make([]domain.SnapshotExercise, 0, len(dayExercises))
		for _, ex := range dayExercises {
			catalogEntry, ok := catalog[ex.CatalogExerciseID]
			if !ok {
				// Restrict-delete makes a dangling reference impossible in
				// normal operation; treat it as a broken template.
				return ErrTemplateNotFound
			}

			imageKeys := make([]string, 0, domain.MaxExerciseImages)
			imageKeys = append(imageKeys, catalogEntry.ImageKeys...)
			if len(imageKeys) > domain.MaxExerciseImages {
				imageKeys = imageKeys[:domain.MaxExerciseImages]
			}

			catalogID := catalogEntry.ID
			snapshots = append(snapshots, domain.SnapshotExercise{
				SnapshotDayID:     snapDayID,
				AssignmentID:      assignment.ID,
				ParticipantID:     assignment.ParticipantID,
				CatalogExerciseID: &catalogID,
				Position:          ex.Position,
				Name:              catalogEntry.Name,
				Sets:              ex.Sets,
				Reps:              ex.Reps,
				Notes:             ex.Notes,
				ImageKeys:         imageKeys,
			})
		}

		if err := s.assignmentRepo.InsertSnapshotExercises(ctx, snapshots); err != nil {
			return err
		}
	}
	return nil
}

// GetActiveAssignment returns the active assignment for a participant+month
// expanded with its full snapshot tree, or nil if none exists. Absence is a
// normal state, not an error.
func (s *assignmentService) GetActiveAssignment(ctx context.Context, participantID primitive.ObjectID, month domain.Month) (*domain.AssignmentWithPlan, error) {
	if err := month.Validate(); err != nil {
		return nil, ErrInvalidMonth
	}

	assignment, err := s.assignmentRepo.FindActiveByParticipantAndMonth(ctx, participantID, month)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	days, err := s.assignmentRepo.GetSnapshotDays(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.assignmentRepo.GetSnapshotExercisesByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[primitive.ObjectID][]domain.SnapshotExercise, len(days))
	for _, ex := range exercises {
		byDay[ex.SnapshotDayID] = append(byDay[ex.SnapshotDayID], ex)
	}

	plan := &domain.AssignmentWithPlan{
		Assignment: *assignment,
		Days:       make([]domain.SnapshotDayWithPlan, 0, len(days)),
	}
	for _, day := range days {
		dayExercises := byDay[day.ID]
		if dayExercises == nil {
			dayExercises = []domain.SnapshotExercise{}
		}
		plan.Days = append(plan.Days, domain.SnapshotDayWithPlan{
			Day:       day,
			Exercises: dayExercises,
		})
	}
	return plan, nil
}

// GetAssignmentHistory returns every assignment the participant has had,
// active and deactivated, month descending then creation time descending,
// with template display metadata joined in. The snapshot trees are not
// expanded.
func (s *assignmentService) GetAssignmentHistory(ctx context.Context, participantID primitive.ObjectID) ([]domain.AssignmentSummary, error) {
	if participantID == primitive.NilObjectID {
		return nil, errors.New("participant ID is required")
	}

	assignments, err := s.assignmentRepo.GetByParticipantID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []domain.AssignmentSummary{}, nil
	}

	templateIDs := make([]primitive.ObjectID, 0, len(assignments))
	seen := make(map[primitive.ObjectID]bool, len(assignments))
	for _, a := range assignments {
		if !seen[a.TemplateID] {
			seen[a.TemplateID] = true
			templateIDs = append(templateIDs, a.TemplateID)
		}
	}
	templates, err := s.templateRepo.GetByIDs(ctx, templateIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.AssignmentSummary, 0, len(assignments))
	for _, a := range assignments {
		summary := domain.AssignmentSummary{Assignment: a}
		if t, ok := templates[a.TemplateID]; ok {
			summary.TemplateName = t.Name
			summary.TemplateCategory = t.Category
			summary.TemplateDifficulty = t.Difficulty
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
