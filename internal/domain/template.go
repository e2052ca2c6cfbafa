package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template is a reusable, editable multi-day workout program.
// Assigning it to a participant freezes a copy; the template itself
// stays mutable.
type Template struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who created the template
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"` // e.g. "hypertrophy", "strength"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty  string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "novice", "intermediate", "advanced"
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateDay is one training day within a template. DayNumber is unique
// within its template.
type TemplateDay struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID  primitive.ObjectID `bson:"templateId" json:"templateId"`
	DayNumber   int                `bson:"dayNumber" json:"dayNumber"` // 1..N
	Name        string             `bson:"name" json:"name"`           // e.g. "Day 1: Upper Body"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateDayExercise places a catalog exercise into a template day with
// per-template overrides. Position is unique within its day. The catalog
// exercise cannot be removed while referenced here.
type TemplateDayExercise struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateDayID     primitive.ObjectID `bson:"templateDayId" json:"templateDayId"`
	TemplateID        primitive.ObjectID `bson:"templateId" json:"templateId"` // Denormalized for template-wide queries
	CatalogExerciseID primitive.ObjectID `bson:"catalogExerciseId" json:"catalogExerciseId"`
	Position          int                `bson:"position" json:"position"` // Order within the day
	Sets              int                `bson:"sets" json:"sets"`
	Reps              string             `bson:"reps" json:"reps"` // Free-form, e.g. "8-12" or "5"
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateWithDays is the fully expanded template tree, day order ascending.
type TemplateWithDays struct {
	Template Template          `json:"template"`
	Days     []TemplateDayFull `json:"days"`
}

// TemplateDayFull is a template day with its ordered exercises.
type TemplateDayFull struct {
	Day       TemplateDay           `json:"day"`
	Exercises []TemplateDayExercise `json:"exercises"`
}
