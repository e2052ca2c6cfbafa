package repository

import (
	"context"

	"gymkeeper/gym-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrConflict     = RepositoryError("transaction conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner executes a function inside one atomic storage transaction.
// Every repository call made with the context passed to fn participates in
// the same transaction; if fn returns an error the whole transaction rolls
// back and no partial writes are observable.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// CatalogRepository defines the interface for the canonical exercise catalog.
type CatalogRepository interface {
	Create(ctx context.Context, exercise *domain.CatalogExercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CatalogExercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.CatalogExercise, error)
	GetByName(ctx context.Context, name string) (*domain.CatalogExercise, error)
	List(ctx context.Context, activeOnly bool) ([]domain.CatalogExercise, error)
	Update(ctx context.Context, exercise *domain.CatalogExercise) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TemplateRepository defines the interface for templates and their day/exercise tree.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Template, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error)
	Update(ctx context.Context, template *domain.Template) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error

	// Days, ordered by day number.
	AddDay(ctx context.Context, day *domain.TemplateDay) (primitive.ObjectID, error)
	GetDay(ctx context.Context, dayID primitive.ObjectID) (*domain.TemplateDay, error)
	GetDays(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateDay, error)
	UpdateDay(ctx context.Context, day *domain.TemplateDay) error
	DeleteDay(ctx context.Context, dayID primitive.ObjectID) error

	// Day exercises, ordered by position.
	AddDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) (primitive.ObjectID, error)
	GetDayExercise(ctx context.Context, id primitive.ObjectID) (*domain.TemplateDayExercise, error)
	GetDayExercises(ctx context.Context, dayID primitive.ObjectID) ([]domain.TemplateDayExercise, error)
	UpdateDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) error
	DeleteDayExercise(ctx context.Context, id primitive.ObjectID) error
	DeleteDayExercisesByDay(ctx context.Context, dayID primitive.ObjectID) error

	// CountByCatalogExercise reports how many day exercises reference the
	// given catalog entry, across all templates. Used for restrict-delete.
	CountByCatalogExercise(ctx context.Context, catalogExerciseID primitive.ObjectID) (int64, error)
}

// AssignmentRepository defines the interface for assignments and their
// frozen snapshot trees. Snapshot rows are insert-only: no update methods
// exist for them apart from UnsetCatalogReference, which implements the
// set-null-on-delete rule for the informational catalog back-reference.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error)
	FindActiveByParticipantAndMonth(ctx context.Context, participantID primitive.ObjectID, month domain.Month) (*domain.Assignment, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	GetByParticipantID(ctx context.Context, participantID primitive.ObjectID) ([]domain.Assignment, error)

	InsertSnapshotDay(ctx context.Context, day *domain.SnapshotDay) (primitive.ObjectID, error)
	InsertSnapshotExercises(ctx context.Context, exercises []domain.SnapshotExercise) error
	GetSnapshotDays(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotDay, error)
	GetSnapshotExercisesByAssignment(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotExercise, error)
	GetSnapshotExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.SnapshotExercise, error)
	FindSnapshotExerciseIDsByName(ctx context.Context, participantID primitive.ObjectID, name string) ([]primitive.ObjectID, error)
	UnsetCatalogReference(ctx context.Context, catalogExerciseID primitive.ObjectID) error
}

// TrainingLogRepository defines the interface for logged performance entries.
type TrainingLogRepository interface {
	Create(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingLogEntry, error)
	Update(ctx context.Context, entry *domain.TrainingLogEntry) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountBySnapshotExerciseIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	FindBySnapshotExerciseIDs(ctx context.Context, participantID primitive.ObjectID, ids []primitive.ObjectID, limit int64) ([]domain.TrainingLogEntry, error)
}
