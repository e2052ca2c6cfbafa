package mongo

import (
	"context"
	"errors"
	"time"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	assignmentCollectionName       = "assignments"
	snapshotDayCollectionName      = "snapshot_days"
	snapshotExerciseCollectionName = "snapshot_exercises"
)

// mongoAssignmentRepository implements repository.AssignmentRepository.
// Snapshot collections are insert-only; the single update path on them is
// UnsetCatalogReference (set-null-on-delete for the catalog back-ref).
type mongoAssignmentRepository struct {
	assignments       *mongo.Collection
	snapshotDays      *mongo.Collection
	snapshotExercises *mongo.Collection
}

// NewMongoAssignmentRepository creates a new assignment repository backed by MongoDB.
func NewMongoAssignmentRepository(db *mongo.Database) repository.AssignmentRepository {
	return &mongoAssignmentRepository{
		assignments:       db.Collection(assignmentCollectionName),
		snapshotDays:      db.Collection(snapshotDayCollectionName),
		snapshotExercises: db.Collection(snapshotExerciseCollectionName),
	}
}

// Create inserts a new assignment. The partial unique index on
// (participantId, month, active=true) turns a second concurrent active
// insert into ErrDuplicate, backing up the transactional pre-check.
func (r *mongoAssignmentRepository) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	if assignment.ParticipantID == primitive.NilObjectID ||
		assignment.TemplateID == primitive.NilObjectID ||
		assignment.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires participantId, templateId and trainerId")
	}
	if err := assignment.Month.Validate(); err != nil {
		return primitive.NilObjectID, err
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	result, err := r.assignments.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetByID retrieves an assignment by its ID.
func (r *mongoAssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	var assignment domain.Assignment
	err := r.assignments.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// FindActiveByParticipantAndMonth retrieves the single active assignment for
// a (participant, month) pair, or ErrNotFound.
func (r *mongoAssignmentRepository) FindActiveByParticipantAndMonth(ctx context.Context, participantID primitive.ObjectID, month domain.Month) (*domain.Assignment, error) {
	filter := bson.M{
		"participantId": participantID,
		"month":         month,
		"active":        true,
	}

	var assignment domain.Assignment
	err := r.assignments.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// Deactivate flips the active flag off. The assignment and its snapshot tree
// are kept; this is the only mutation an assignment ever sees.
func (r *mongoAssignmentRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	result, err := r.assignments.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByParticipantID retrieves all assignments (active and deactivated) for
// a participant, month descending then creation time descending.
func (r *mongoAssignmentRepository) GetByParticipantID(ctx context.Context, participantID primitive.ObjectID) ([]domain.Assignment, error) {
	findOptions := options.Find().SetSort(bson.D{
		{Key: "month", Value: -1}, // "YYYY-MM" sorts chronologically
		{Key: "createdAt", Value: -1},
	})

	cursor, err := r.assignments.Find(ctx, bson.M{"participantId": participantID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// === Snapshot tree ===

// InsertSnapshotDay writes one frozen day copy.
func (r *mongoAssignmentRepository) InsertSnapshotDay(ctx context.Context, day *domain.SnapshotDay) (primitive.ObjectID, error) {
	if day.AssignmentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("snapshot day requires assignmentId")
	}

	day.ID = primitive.NewObjectID()
	day.CreatedAt = time.Now().UTC()

	result, err := r.snapshotDays.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted snapshot day ID")
	}
	return insertedID, nil
}

// InsertSnapshotExercises writes the frozen exercise copies of one day in a
// single batch. IDs are assigned here so the caller sees them after commit.
func (r *mongoAssignmentRepository) InsertSnapshotExercises(ctx context.Context, exercises []domain.SnapshotExercise) error {
	if len(exercises) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		exercises[i].CreatedAt = now
		docs[i] = exercises[i]
	}

	_, err := r.snapshotExercises.InsertMany(ctx, docs)
	return err
}

// GetSnapshotDays retrieves an assignment's days in day-number order.
func (r *mongoAssignmentRepository) GetSnapshotDays(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotDay, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})

	cursor, err := r.snapshotDays.Find(ctx, bson.M{"assignmentId": assignmentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var days []domain.SnapshotDay
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// GetSnapshotExercisesByAssignment retrieves every snapshot exercise of an
// assignment in position order. Callers group them by day.
func (r *mongoAssignmentRepository) GetSnapshotExercisesByAssignment(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.snapshotExercises.Find(ctx, bson.M{"assignmentId": assignmentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.SnapshotExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// GetSnapshotExerciseByID retrieves a single snapshot exercise.
func (r *mongoAssignmentRepository) GetSnapshotExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.SnapshotExercise, error) {
	var exercise domain.SnapshotExercise
	err := r.snapshotExercises.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// FindSnapshotExerciseIDsByName retrieves the IDs of every snapshot exercise
// a participant has ever had with the exact denormalized name, across all
// assignments. Snapshot identities are not stable across assignments, so
// cross-history matching goes through this name bucket.
func (r *mongoAssignmentRepository) FindSnapshotExerciseIDsByName(ctx context.Context, participantID primitive.ObjectID, name string) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"participantId": participantID,
		"name":          name,
	}
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.snapshotExercises.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// UnsetCatalogReference nulls the informational catalog back-reference on
// every snapshot exercise pointing at a removed catalog entry. Display data
// is untouched: snapshots never re-resolve against the catalog.
func (r *mongoAssignmentRepository) UnsetCatalogReference(ctx context.Context, catalogExerciseID primitive.ObjectID) error {
	filter := bson.M{"catalogExerciseId": catalogExerciseID}
	update := bson.M{"$unset": bson.M{"catalogExerciseId": ""}}
	_, err := r.snapshotExercises.UpdateMany(ctx, filter, update)
	return err
}

// EnsureAssignmentIndexes creates necessary indexes for the assignment and
// snapshot collections.
func EnsureAssignmentIndexes(ctx context.Context, db *mongo.Database) {
	assignmentIndexes := []mongo.IndexModel{
		{
			// Backstop for the at-most-one-active invariant. The engine's
			// transactional pre-check is the primary enforcement; this index
			// catches the race the pre-check cannot see.
			Keys: bson.D{{Key: "participantId", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "participantId", Value: 1}, {Key: "month", Value: -1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(assignmentCollectionName).Indexes().CreateMany(ctx, assignmentIndexes)

	dayIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(snapshotDayCollectionName).Indexes().CreateMany(ctx, dayIndexes)

	exerciseIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assignmentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "snapshotDayId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
		{
			// Name-bucket lookups for cross-snapshot history
			Keys:    bson.D{{Key: "participantId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index(),
		},
		{
			// Set-null-on-delete lookups
			Keys:    bson.D{{Key: "catalogExerciseId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = db.Collection(snapshotExerciseCollectionName).Indexes().CreateMany(ctx, exerciseIndexes)
}
