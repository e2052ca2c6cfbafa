package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MuscleGroup tags a catalog exercise with its primary target area.
type MuscleGroup string

const (
	MuscleGroupChest     MuscleGroup = "chest"
	MuscleGroupBack      MuscleGroup = "back"
	MuscleGroupLegs      MuscleGroup = "legs"
	MuscleGroupShoulders MuscleGroup = "shoulders"
	MuscleGroupArms      MuscleGroup = "arms"
	MuscleGroupCore      MuscleGroup = "core"
	MuscleGroupFullBody  MuscleGroup = "full_body"
)

// ValidMuscleGroup reports whether g is one of the known tags.
func ValidMuscleGroup(g MuscleGroup) bool {
	switch g {
	case MuscleGroupChest, MuscleGroupBack, MuscleGroupLegs,
		MuscleGroupShoulders, MuscleGroupArms, MuscleGroupCore, MuscleGroupFullBody:
		return true
	}
	return false
}

// MaxExerciseImages caps how many reference images a catalog exercise may carry.
const MaxExerciseImages = 3

// CatalogExercise is the canonical, deduplicated definition of an exercise.
// Templates reference it by ID; snapshots copy its fields at assignment time,
// so later edits here never reach frozen snapshots.
type CatalogExercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Trainer who created this entry
	Name         string             `bson:"name" json:"name"`           // Globally unique
	MuscleGroup  MuscleGroup        `bson:"muscleGroup" json:"muscleGroup"`
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"`
	ImageKeys    []string           `bson:"imageKeys,omitempty" json:"imageKeys,omitempty"` // S3 object keys, at most MaxExerciseImages
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
