package service

import (
	"context"
	"errors"
	"time"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrLogEntryNotFound    = errors.New("log entry not found")
	ErrLogAccessDenied     = errors.New("access denied to modify this log entry")
	ErrInvalidLogReference = errors.New("referenced snapshot exercise does not exist")
	ErrLogValidationFailed = errors.New("log entry validation failed")
)

// TrainingLogService records and maintains logged performance entries.
// Entries always point at the snapshot exercise they were logged against;
// they never migrate when the participant is reassigned. The log date is
// deliberately unconstrained by the assignment's month.
type TrainingLogService interface {
	RecordLog(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID, date time.Time, weight float64, sets, reps int, comment string) (*domain.TrainingLogEntry, error)
	UpdateLog(ctx context.Context, participantID, logID primitive.ObjectID, date time.Time, weight float64, sets, reps int, comment string) (*domain.TrainingLogEntry, error)
	DeleteLog(ctx context.Context, participantID, logID primitive.ObjectID) error
}

// trainingLogService implements the TrainingLogService interface.
type trainingLogService struct {
	logRepo        repository.TrainingLogRepository
	assignmentRepo repository.AssignmentRepository
}

// NewTrainingLogService creates a new instance of trainingLogService.
func NewTrainingLogService(
	logRepo repository.TrainingLogRepository,
	assignmentRepo repository.AssignmentRepository,
) TrainingLogService {
	return &trainingLogService{
		logRepo:        logRepo,
		assignmentRepo: assignmentRepo,
	}
}

// RecordLog inserts one logged entry against a snapshot exercise.
func (s *trainingLogService) RecordLog(ctx context.Context, participantID, snapshotExerciseID primitive.ObjectID, date time.Time, weight float64, sets, reps int, comment string) (*domain.TrainingLogEntry, error) {
	// 1. Validate Inputs
	if participantID == primitive.NilObjectID || snapshotExerciseID == primitive.NilObjectID {
		return nil, ErrLogValidationFailed
	}
	if weight < 0 || sets < 0 || reps < 0 {
		return nil, ErrLogValidationFailed
	}

	// 2. The snapshot exercise must exist; anything else is an invalid reference
	if _, err := s.assignmentRepo.GetSnapshotExerciseByID(ctx, snapshotExerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidLogReference
		}
		return nil, err
	}

	// 3. Insert
	entry := &domain.TrainingLogEntry{
		ParticipantID:      participantID,
		SnapshotExerciseID: snapshotExerciseID,
		LogDate:            date,
		Weight:             weight,
		CompletedSets:      sets,
		CompletedReps:      reps,
		Comment:            comment,
	}
	entryID, err := s.logRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = entryID
	return entry, nil
}

// UpdateLog mutates an entry's logged values in place. The snapshot exercise
// reference is never changed.
func (s *trainingLogService) UpdateLog(ctx context.Context, participantID, logID primitive.ObjectID, date time.Time, weight float64, sets, reps int, comment string) (*domain.TrainingLogEntry, error) {
	if logID == primitive.NilObjectID {
		return nil, ErrLogValidationFailed
	}
	if weight < 0 || sets < 0 || reps < 0 {
		return nil, ErrLogValidationFailed
	}

	entry, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogEntryNotFound
		}
		return nil, err
	}
	if entry.ParticipantID != participantID {
		return nil, ErrLogAccessDenied
	}

	entry.LogDate = date
	entry.Weight = weight
	entry.CompletedSets = sets
	entry.CompletedReps = reps
	entry.Comment = comment

	if err := s.logRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLogEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// DeleteLog removes an entry by identity.
func (s *trainingLogService) DeleteLog(ctx context.Context, participantID, logID primitive.ObjectID) error {
	if logID == primitive.NilObjectID {
		return ErrLogValidationFailed
	}

	entry, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogEntryNotFound
		}
		return err
	}
	if entry.ParticipantID != participantID {
		return ErrLogAccessDenied
	}

	if err := s.logRepo.Delete(ctx, logID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLogEntryNotFound
		}
		return err
	}
	return nil
}
