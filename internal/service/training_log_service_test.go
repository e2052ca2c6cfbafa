package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRecordLog(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	ctx := context.Background()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")

	entry, err := svc.RecordLog(ctx, f.participant.ID, squat.ID,
		time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC), 100, 5, 5, "solid")
	require.NoError(t, err)
	assert.False(t, entry.ID.IsZero())
	assert.Equal(t, squat.ID, entry.SnapshotExerciseID)
	assert.Equal(t, 100.0, entry.Weight)
	assert.Equal(t, "solid", entry.Comment)
}

func TestRecordLog_InvalidReference(t *testing.T) {
	f := newAssignmentFixture()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	_, err := svc.RecordLog(context.Background(), f.participant.ID, primitive.NewObjectID(),
		time.Now(), 100, 5, 5, "")
	assert.ErrorIs(t, err, ErrInvalidLogReference)
}

func TestRecordLog_RejectsNegativeValues(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")

	_, err := svc.RecordLog(context.Background(), f.participant.ID, squat.ID, time.Now(), -1, 5, 5, "")
	assert.ErrorIs(t, err, ErrLogValidationFailed)
	_, err = svc.RecordLog(context.Background(), f.participant.ID, squat.ID, time.Now(), 100, -1, 5, "")
	assert.ErrorIs(t, err, ErrLogValidationFailed)
}

func TestRecordLog_DateOutsideAssignmentMonthIsAllowed(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")

	// A make-up session logged in October against the September plan.
	entry, err := svc.RecordLog(context.Background(), f.participant.ID, squat.ID,
		time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC), 95, 5, 5, "make-up session")
	require.NoError(t, err)
	assert.Equal(t, time.October, entry.LogDate.Month())
}

func TestUpdateLog(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	ctx := context.Background()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")
	entry, err := svc.RecordLog(ctx, f.participant.ID, squat.ID, time.Now(), 100, 5, 5, "")
	require.NoError(t, err)

	updated, err := svc.UpdateLog(ctx, f.participant.ID, entry.ID, entry.LogDate, 102.5, 5, 4, "grindy last rep")
	require.NoError(t, err)
	assert.Equal(t, 102.5, updated.Weight)
	assert.Equal(t, 4, updated.CompletedReps)
	assert.Equal(t, squat.ID, updated.SnapshotExerciseID, "snapshot reference never changes")
}

func TestUpdateLog_OwnershipEnforced(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	ctx := context.Background()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")
	entry, err := svc.RecordLog(ctx, f.participant.ID, squat.ID, time.Now(), 100, 5, 5, "")
	require.NoError(t, err)

	_, err = svc.UpdateLog(ctx, primitive.NewObjectID(), entry.ID, entry.LogDate, 50, 1, 1, "")
	assert.ErrorIs(t, err, ErrLogAccessDenied)

	err = svc.DeleteLog(ctx, primitive.NewObjectID(), entry.ID)
	assert.ErrorIs(t, err, ErrLogAccessDenied)
}

func TestDeleteLog(t *testing.T) {
	f := newAssignmentFixture()
	tmpl, _ := f.seedTemplate(t)
	ctx := context.Background()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	squat := assignAndFindExercise(t, f, tmpl.ID, "2026-09", "Barbell Squat")
	entry, err := svc.RecordLog(ctx, f.participant.ID, squat.ID, time.Now(), 100, 5, 5, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLog(ctx, f.participant.ID, entry.ID))

	err = svc.DeleteLog(ctx, f.participant.ID, entry.ID)
	assert.ErrorIs(t, err, ErrLogEntryNotFound)
}

func TestUpdateLog_NotFound(t *testing.T) {
	f := newAssignmentFixture()
	svc := NewTrainingLogService(f.logRepo, f.assignmentRepo)

	_, err := svc.UpdateLog(context.Background(), f.participant.ID, primitive.NewObjectID(),
		time.Now(), 100, 5, 5, "")
	assert.ErrorIs(t, err, ErrLogEntryNotFound)
}
