package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingLogEntry records one logged performance against a snapshot
// exercise. It always points at the snapshot exercise that was current when
// it was logged and never migrates to a newer snapshot, so history stays
// interpretable against the plan that was in effect at the time.
//
// The log date is not constrained by the assignment's target month; the
// relationship is advisory only.
type TrainingLogEntry struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID      primitive.ObjectID `bson:"participantId" json:"participantId"`
	SnapshotExerciseID primitive.ObjectID `bson:"snapshotExerciseId" json:"snapshotExerciseId"`
	LogDate            time.Time          `bson:"logDate" json:"logDate"`
	Weight             float64            `bson:"weight" json:"weight"` // Kilograms
	CompletedSets      int                `bson:"completedSets" json:"completedSets"`
	CompletedReps      int                `bson:"completedReps" json:"completedReps"`
	Comment            string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}
