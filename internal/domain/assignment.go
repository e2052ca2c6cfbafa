package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment binds one template to one participant for one calendar month.
// At most one assignment per (participant, month) is active at a time; a
// reassignment deactivates the previous one instead of deleting it, so the
// snapshot tree and any logs pointing into it stay retrievable forever.
type Assignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID primitive.ObjectID `bson:"participantId" json:"participantId"`
	TemplateID    primitive.ObjectID `bson:"templateId" json:"templateId"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who performed the assignment
	Month         Month              `bson:"month" json:"month"`
	TrainerNotes  string             `bson:"trainerNotes,omitempty" json:"trainerNotes,omitempty"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"` // Touched only when the active flag flips
}

// SnapshotDay is the frozen copy of a TemplateDay. Written once by the
// assignment engine and never mutated afterwards.
type SnapshotDay struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	DayNumber    int                `bson:"dayNumber" json:"dayNumber"`
	Name         string             `bson:"name" json:"name"`
	WeekdayLabel string             `bson:"weekdayLabel" json:"weekdayLabel"` // Computed from DayNumber at copy time
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// SnapshotExercise is the frozen copy of a TemplateDayExercise joined with
// its catalog entry at assignment time. Name, sets, reps, notes and image
// references are denormalized; the catalog back-reference is informational
// only and is nulled if the catalog entry is ever removed, never re-resolved.
// ParticipantID and AssignmentID are denormalized for history queries.
type SnapshotExercise struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SnapshotDayID     primitive.ObjectID  `bson:"snapshotDayId" json:"snapshotDayId"`
	AssignmentID      primitive.ObjectID  `bson:"assignmentId" json:"assignmentId"`
	ParticipantID     primitive.ObjectID  `bson:"participantId" json:"participantId"`
	CatalogExerciseID *primitive.ObjectID `bson:"catalogExerciseId,omitempty" json:"catalogExerciseId,omitempty"`
	Position          int                 `bson:"position" json:"position"`
	Name              string              `bson:"name" json:"name"`
	Sets              int                 `bson:"sets" json:"sets"`
	Reps              string              `bson:"reps" json:"reps"`
	Notes             string              `bson:"notes,omitempty" json:"notes,omitempty"`
	ImageKeys         []string            `bson:"imageKeys,omitempty" json:"imageKeys,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
}

// AssignmentWithPlan is an assignment expanded with its full snapshot tree,
// days ascending, exercises in position order.
type AssignmentWithPlan struct {
	Assignment Assignment            `json:"assignment"`
	Days       []SnapshotDayWithPlan `json:"days"`
}

// SnapshotDayWithPlan is a snapshot day with its ordered exercises.
type SnapshotDayWithPlan struct {
	Day       SnapshotDay        `json:"day"`
	Exercises []SnapshotExercise `json:"exercises"`
}

// AssignmentSummary is an assignment with template display metadata joined
// in, for history listings. The snapshot tree is not expanded.
type AssignmentSummary struct {
	Assignment         Assignment `json:"assignment"`
	TemplateName       string     `json:"templateName"`
	TemplateCategory   string     `json:"templateCategory,omitempty"`
	TemplateDifficulty string     `json:"templateDifficulty,omitempty"`
}

// WeekdayLabelFor maps a day number onto its display label at snapshot time.
// Days beyond a seven-day split keep a generic label.
func WeekdayLabelFor(dayNumber int) string {
	switch dayNumber {
	case 1:
		return "Monday"
	case 2:
		return "Tuesday"
	case 3:
		return "Wednesday"
	case 4:
		return "Thursday"
	case 5:
		return "Friday"
	case 6:
		return "Saturday"
	case 7:
		return "Sunday"
	default:
		return fmt.Sprintf("Day %d", dayNumber)
	}
}
