package service

import (
	"context"
	"errors"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultHistoryLimit caps GetExerciseHistory when the caller passes no limit.
const DefaultHistoryLimit = 50

// ProgressService answers cross-assignment history questions. A snapshot
// exercise gets a fresh identity every time a template is assigned, so "the
// same exercise over time" is resolved by the denormalized exercise name: the
// given snapshot exercise's name is looked up, then every entry the
// participant logged against any snapshot exercise with that exact name is
// pulled together, newest first.
//
// A rename in the catalog between two assignments therefore splits history
// into two name buckets. That is the accepted behavior of name matching, not
// something this service tries to repair.
type ProgressService interface {
	GetExerciseHistory(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID, limit int64) ([]domain.TrainingLogEntry, error)
	GetLastLog(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID) (*domain.TrainingLogEntry, error)
}

// progressService implements the ProgressService interface.
type progressService struct {
	assignmentRepo repository.AssignmentRepository
	logRepo        repository.TrainingLogRepository
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	assignmentRepo repository.AssignmentRepository,
	logRepo repository.TrainingLogRepository,
) ProgressService {
	return &progressService{
		assignmentRepo: assignmentRepo,
		logRepo:        logRepo,
	}
}

// GetExerciseHistory returns the participant's logged entries for every
// snapshot exercise sharing the given exercise's name, across all
// assignments, log date descending. A missing snapshot exercise yields an
// empty result, not an error.
func (s *progressService) GetExerciseHistory(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID, limit int64) ([]domain.TrainingLogEntry, error) {
	if participantID == primitive.NilObjectID || snapshotExerciseID == primitive.NilObjectID {
		return nil, errors.New("participant ID and snapshot exercise ID are required")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	// 1. Resolve the display name of the reference exercise
	exercise, err := s.assignmentRepo.GetSnapshotExerciseByID(ctx, snapshotExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.TrainingLogEntry{}, nil
		}
		return nil, err
	}

	// 2. Collect every snapshot exercise the participant has had with that name
	ids, err := s.assignmentRepo.FindSnapshotExerciseIDsByName(ctx, participantID, exercise.Name)
	if err != nil {
		return nil, err
	}

	// 3. Pull the log entries across all of them
	return s.logRepo.FindBySnapshotExerciseIDs(ctx, participantID, ids, limit)
}

// GetLastLog returns the most recent entry for the exercise's name bucket,
// or nil if the participant never logged it.
func (s *progressService) GetLastLog(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID) (*domain.TrainingLogEntry, error) {
	entries, err := s.GetExerciseHistory(ctx, participantID, snapshotExerciseID, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}
