package service

import (
	"context"
	"testing"
	"time"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeFileStorage struct {
	deleted []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/get/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

type catalogFixture struct {
	*assignmentFixture
	storage *fakeFileStorage
	svc     CatalogService
}

func newCatalogFixture() *catalogFixture {
	base := newAssignmentFixture()
	st := &fakeFileStorage{}
	return &catalogFixture{
		assignmentFixture: base,
		storage:           st,
		svc:               NewCatalogService(base.catalogRepo, base.templateRepo, base.assignmentRepo, st),
	}
}

func TestCreateExercise(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	exercise, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Overhead Press", domain.MuscleGroupShoulders, "Brace and press.")
	require.NoError(t, err)
	assert.False(t, exercise.ID.IsZero())
	assert.True(t, exercise.Active)

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Overhead Press", domain.MuscleGroupShoulders, "")
		assert.ErrorIs(t, err, ErrExerciseNameTaken)
	})

	t.Run("unknown muscle group rejected", func(t *testing.T) {
		_, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Neck Curl", "neck", "")
		assert.ErrorIs(t, err, ErrExerciseValidation)
	})
}

func TestUpdateExercise_RenameCollision(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	a, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Press A", domain.MuscleGroupShoulders, "")
	require.NoError(t, err)
	_, err = f.svc.CreateExercise(ctx, f.trainer.ID, "Press B", domain.MuscleGroupShoulders, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateExercise(ctx, f.trainer.ID, a.ID, "Press B", domain.MuscleGroupShoulders, "")
	assert.ErrorIs(t, err, ErrExerciseNameTaken)

	// Keeping its own name is not a collision.
	updated, err := f.svc.UpdateExercise(ctx, f.trainer.ID, a.ID, "Press A", domain.MuscleGroupArms, "strict form")
	require.NoError(t, err)
	assert.Equal(t, domain.MuscleGroupArms, updated.MuscleGroup)
}

func TestUpdateExercise_OwnershipEnforced(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	exercise, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Dip", domain.MuscleGroupChest, "")
	require.NoError(t, err)

	otherTrainer := f.userRepo.put(domain.User{Name: "Rival", Email: "rival@gym.test", Role: domain.RoleTrainer, Active: true})
	_, err = f.svc.UpdateExercise(ctx, otherTrainer.ID, exercise.ID, "Dip", domain.MuscleGroupChest, "")
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)
}

func TestDeleteExercise_RestrictedWhileReferenced(t *testing.T) {
	f := newCatalogFixture()
	_, catalog := f.seedTemplate(t)
	ctx := context.Background()

	// Squat is referenced by a template day, so deletion only deactivates.
	err := f.svc.DeleteExercise(ctx, f.trainer.ID, catalog["squat"].ID)
	require.NoError(t, err)

	kept, err := f.catalogRepo.GetByID(ctx, catalog["squat"].ID)
	require.NoError(t, err)
	assert.False(t, kept.Active, "referenced entry is deactivated, not removed")
}

func TestDeleteExercise_UnreferencedIsRemovedAndSnapshotsUnlinked(t *testing.T) {
	f := newCatalogFixture()
	tmpl, catalog := f.seedTemplate(t)
	ctx := context.Background()

	// Freeze a snapshot that references the squat, then drop every template
	// reference so the catalog entry becomes deletable.
	_, err := f.assignmentFixture.svc.AssignTemplate(ctx, f.trainer.ID, f.participant.ID, tmpl.ID, "2026-09", "")
	require.NoError(t, err)
	for id, ex := range f.templateRepo.dayExs {
		if ex.CatalogExerciseID == catalog["squat"].ID {
			delete(f.templateRepo.dayExs, id)
		}
	}

	err = f.svc.DeleteExercise(ctx, f.trainer.ID, catalog["squat"].ID)
	require.NoError(t, err)

	_, err = f.catalogRepo.GetByID(ctx, catalog["squat"].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The snapshot row keeps its denormalized display data; only the
	// informational back-reference is nulled.
	for _, ex := range f.assignmentRepo.snapExs {
		if ex.Name == "Barbell Squat" {
			assert.Nil(t, ex.CatalogExerciseID)
			assert.Equal(t, 5, ex.Sets)
			assert.Equal(t, []string{"catalog/squat/1.jpg"}, ex.ImageKeys)
			return
		}
	}
	t.Fatal("squat snapshot row not found")
}

func TestImageLifecycle(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	exercise, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Lat Pulldown", domain.MuscleGroupBack, "")
	require.NoError(t, err)

	ticket, err := f.svc.RequestImageUpload(ctx, f.trainer.ID, exercise.ID, "image/png")
	require.NoError(t, err)
	assert.Contains(t, ticket.ObjectKey, "catalog/"+exercise.ID.Hex()+"/")
	assert.NotEmpty(t, ticket.UploadURL)

	updated, err := f.svc.AttachImage(ctx, f.trainer.ID, exercise.ID, ticket.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, []string{ticket.ObjectKey}, updated.ImageKeys)

	t.Run("attach is idempotent", func(t *testing.T) {
		again, err := f.svc.AttachImage(ctx, f.trainer.ID, exercise.ID, ticket.ObjectKey)
		require.NoError(t, err)
		assert.Len(t, again.ImageKeys, 1)
	})

	t.Run("foreign object key rejected", func(t *testing.T) {
		_, err := f.svc.AttachImage(ctx, f.trainer.ID, exercise.ID, "catalog/other/image.png")
		assert.ErrorIs(t, err, ErrExerciseValidation)
	})

	t.Run("remove deletes the stored object", func(t *testing.T) {
		after, err := f.svc.RemoveImage(ctx, f.trainer.ID, exercise.ID, ticket.ObjectKey)
		require.NoError(t, err)
		assert.Empty(t, after.ImageKeys)
		assert.Contains(t, f.storage.deleted, ticket.ObjectKey)
	})
}

func TestRequestImageUpload_Limits(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	exercise, err := f.svc.CreateExercise(ctx, f.trainer.ID, "Leg Press", domain.MuscleGroupLegs, "")
	require.NoError(t, err)

	t.Run("non-image content type rejected", func(t *testing.T) {
		_, err := f.svc.RequestImageUpload(ctx, f.trainer.ID, exercise.ID, "application/pdf")
		assert.ErrorIs(t, err, ErrUnsupportedImageType)
	})

	t.Run("image cap enforced", func(t *testing.T) {
		for i := 0; i < domain.MaxExerciseImages; i++ {
			ticket, err := f.svc.RequestImageUpload(ctx, f.trainer.ID, exercise.ID, "image/jpeg")
			require.NoError(t, err)
			_, err = f.svc.AttachImage(ctx, f.trainer.ID, exercise.ID, ticket.ObjectKey)
			require.NoError(t, err)
		}
		_, err := f.svc.RequestImageUpload(ctx, f.trainer.ID, exercise.ID, "image/jpeg")
		assert.ErrorIs(t, err, ErrExerciseImageLimit)
	})
}

func TestResolveImageURLs(t *testing.T) {
	f := newCatalogFixture()
	exercise := &domain.CatalogExercise{
		ID:        primitive.NewObjectID(),
		ImageKeys: []string{"catalog/x/1.jpg", "catalog/x/2.jpg"},
	}

	urls, err := f.svc.ResolveImageURLs(context.Background(), exercise)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://storage.test/get/catalog/x/1.jpg",
		"https://storage.test/get/catalog/x/2.jpg",
	}, urls)
}
