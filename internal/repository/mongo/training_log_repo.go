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

const trainingLogCollectionName = "training_logs"

// mongoTrainingLogRepository implements repository.TrainingLogRepository
type mongoTrainingLogRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingLogRepository creates a new training log repository backed by MongoDB.
func NewMongoTrainingLogRepository(db *mongo.Database) repository.TrainingLogRepository {
	return &mongoTrainingLogRepository{
		collection: db.Collection(trainingLogCollectionName),
	}
}

// Create inserts a new log entry.
func (r *mongoTrainingLogRepository) Create(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error) {
	if entry.ParticipantID == primitive.NilObjectID || entry.SnapshotExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("log entry requires participantId and snapshotExerciseId")
	}

	entry.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.LogDate.IsZero() {
		entry.LogDate = now
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted log entry ID")
	}
	return insertedID, nil
}

// GetByID retrieves a log entry by its ID.
func (r *mongoTrainingLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingLogEntry, error) {
	var entry domain.TrainingLogEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Update modifies the logged values of an entry. The snapshot exercise
// reference is immutable: an entry never migrates to a different snapshot.
func (r *mongoTrainingLogRepository) Update(ctx context.Context, entry *domain.TrainingLogEntry) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("log entry ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"logDate":       entry.LogDate,
			"weight":        entry.Weight,
			"completedSets": entry.CompletedSets,
			"completedReps": entry.CompletedReps,
			"comment":       entry.Comment,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a log entry by ID.
func (r *mongoTrainingLogRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountBySnapshotExerciseIDs reports how many entries reference any of the
// given snapshot exercises. Used to warn on reassignment over logged history.
func (r *mongoTrainingLogRepository) CountBySnapshotExerciseIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.collection.CountDocuments(ctx, bson.M{"snapshotExerciseId": bson.M{"$in": ids}})
}

// FindBySnapshotExerciseIDs retrieves a participant's entries referencing
// any of the given snapshot exercises, log date descending, truncated to
// limit (0 means no limit).
func (r *mongoTrainingLogRepository) FindBySnapshotExerciseIDs(ctx context.Context, participantID primitive.ObjectID, ids []primitive.ObjectID, limit int64) ([]domain.TrainingLogEntry, error) {
	if len(ids) == 0 {
		return []domain.TrainingLogEntry{}, nil
	}

	filter := bson.M{
		"participantId":      participantID,
		"snapshotExerciseId": bson.M{"$in": ids},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "logDate", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.TrainingLogEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EnsureTrainingLogIndexes creates necessary indexes for the training log collection.
func EnsureTrainingLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "snapshotExerciseId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "participantId", Value: 1}, {Key: "logDate", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
