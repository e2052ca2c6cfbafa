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
	templateCollectionName            = "templates"
	templateDayCollectionName         = "template_days"
	templateDayExerciseCollectionName = "template_day_exercises"
)

// mongoTemplateRepository implements repository.TemplateRepository across
// the three template collections.
type mongoTemplateRepository struct {
	templates    *mongo.Collection
	days         *mongo.Collection
	dayExercises *mongo.Collection
}

// NewMongoTemplateRepository creates a new template repository backed by MongoDB.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		templates:    db.Collection(templateCollectionName),
		days:         db.Collection(templateDayCollectionName),
		dayExercises: db.Collection(templateDayExerciseCollectionName),
	}
}

// === Templates ===

// Create inserts a new template.
func (r *mongoTemplateRepository) Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error) {
	if template.Name == "" || template.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template requires name and trainerId")
	}

	template.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	result, err := r.templates.InsertOne(ctx, template)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template ID")
	}
	return insertedID, nil
}

// GetByID retrieves a template by its ID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	var template domain.Template
	err := r.templates.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByIDs retrieves templates for a set of IDs, keyed by ID.
func (r *mongoTemplateRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Template, error) {
	result := make(map[primitive.ObjectID]domain.Template, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.templates.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.Template
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	for _, t := range templates {
		result[t.ID] = t
	}
	return result, nil
}

// GetByTrainerID retrieves all templates created by a trainer, newest first.
func (r *mongoTemplateRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.templates.Find(ctx, bson.M{"trainerId": trainerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.Template
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update modifies the mutable fields of a template.
func (r *mongoTemplateRepository) Update(ctx context.Context, template *domain.Template) error {
	if template.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":        template.Name,
			"category":    template.Category,
			"description": template.Description,
			"difficulty":  template.Difficulty,
			"active":      template.Active,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.templates.UpdateOne(ctx, bson.M{"_id": template.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Deactivate flips the active flag off. Existing assignments keep their
// snapshots; only new assignments are prevented.
func (r *mongoTemplateRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now().UTC()}}
	result, err := r.templates.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// === Days ===

// AddDay inserts a new template day. Day-number uniqueness within the
// template is backed by a unique compound index.
func (r *mongoTemplateRepository) AddDay(ctx context.Context, day *domain.TemplateDay) (primitive.ObjectID, error) {
	if day.TemplateID == primitive.NilObjectID || day.DayNumber < 1 {
		return primitive.NilObjectID, errors.New("template day requires templateId and a positive day number")
	}

	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.days.InsertOne(ctx, day)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template day ID")
	}
	return insertedID, nil
}

// GetDay retrieves a single template day by ID.
func (r *mongoTemplateRepository) GetDay(ctx context.Context, dayID primitive.ObjectID) (*domain.TemplateDay, error) {
	var day domain.TemplateDay
	err := r.days.FindOne(ctx, bson.M{"_id": dayID}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetDays retrieves all days of a template in day-number order.
func (r *mongoTemplateRepository) GetDays(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateDay, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})

	cursor, err := r.days.Find(ctx, bson.M{"templateId": templateID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var days []domain.TemplateDay
	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// UpdateDay modifies a template day's display fields and day number.
func (r *mongoTemplateRepository) UpdateDay(ctx context.Context, day *domain.TemplateDay) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("template day ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"dayNumber":   day.DayNumber,
			"name":        day.Name,
			"description": day.Description,
			"updatedAt":   time.Now().UTC(),
		},
	}

	result, err := r.days.UpdateOne(ctx, bson.M{"_id": day.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteDay removes a template day. Callers remove its exercises first via
// DeleteDayExercisesByDay.
func (r *mongoTemplateRepository) DeleteDay(ctx context.Context, dayID primitive.ObjectID) error {
	result, err := r.days.DeleteOne(ctx, bson.M{"_id": dayID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// === Day exercises ===

// AddDayExercise inserts a new day exercise. Position uniqueness within the
// day is backed by a unique compound index.
func (r *mongoTemplateRepository) AddDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) (primitive.ObjectID, error) {
	if exercise.TemplateDayID == primitive.NilObjectID || exercise.CatalogExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day exercise requires templateDayId and catalogExerciseId")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.dayExercises.InsertOne(ctx, exercise)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day exercise ID")
	}
	return insertedID, nil
}

// GetDayExercise retrieves a single day exercise by ID.
func (r *mongoTemplateRepository) GetDayExercise(ctx context.Context, id primitive.ObjectID) (*domain.TemplateDayExercise, error) {
	var exercise domain.TemplateDayExercise
	err := r.dayExercises.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetDayExercises retrieves a day's exercises in position order.
func (r *mongoTemplateRepository) GetDayExercises(ctx context.Context, dayID primitive.ObjectID) ([]domain.TemplateDayExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.dayExercises.Find(ctx, bson.M{"templateDayId": dayID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.TemplateDayExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// UpdateDayExercise modifies the per-template overrides of a day exercise.
func (r *mongoTemplateRepository) UpdateDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("day exercise ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"position":  exercise.Position,
			"sets":      exercise.Sets,
			"reps":      exercise.Reps,
			"notes":     exercise.Notes,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.dayExercises.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteDayExercise removes a single day exercise.
func (r *mongoTemplateRepository) DeleteDayExercise(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.dayExercises.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteDayExercisesByDay removes every exercise belonging to a day.
func (r *mongoTemplateRepository) DeleteDayExercisesByDay(ctx context.Context, dayID primitive.ObjectID) error {
	_, err := r.dayExercises.DeleteMany(ctx, bson.M{"templateDayId": dayID})
	return err
}

// CountByCatalogExercise reports how many day exercises reference a catalog
// entry across all templates.
func (r *mongoTemplateRepository) CountByCatalogExercise(ctx context.Context, catalogExerciseID primitive.ObjectID) (int64, error) {
	return r.dayExercises.CountDocuments(ctx, bson.M{"catalogExerciseId": catalogExerciseID})
}

// EnsureTemplateIndexes creates necessary indexes for the three template
// collections.
func EnsureTemplateIndexes(ctx context.Context, db *mongo.Database) {
	templateIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(templateCollectionName).Indexes().CreateMany(ctx, templateIndexes)

	dayIndexes := []mongo.IndexModel{
		{
			// Day number unique within its template
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = db.Collection(templateDayCollectionName).Indexes().CreateMany(ctx, dayIndexes)

	dayExerciseIndexes := []mongo.IndexModel{
		{
			// Position unique within its day
			Keys:    bson.D{{Key: "templateDayId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Restrict-delete lookups by catalog reference
			Keys:    bson.D{{Key: "catalogExerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = db.Collection(templateDayExerciseCollectionName).Indexes().CreateMany(ctx, dayExerciseIndexes)
}
