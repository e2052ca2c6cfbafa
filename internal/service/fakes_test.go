package service

import (
	"context"
	"sort"
	"time"

	"gymkeeper/gym-app/internal/domain"
	"gymkeeper/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mirror the
// query semantics of the mongo implementations (ordering, ErrNotFound on
// absent reads) without a running database.

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- users ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) put(u domain.User) domain.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := u
	return &copied, nil
}

// --- catalog ---

type fakeCatalogRepo struct {
	exercises map[primitive.ObjectID]domain.CatalogExercise
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{exercises: make(map[primitive.ObjectID]domain.CatalogExercise)}
}

func (r *fakeCatalogRepo) put(e domain.CatalogExercise) domain.CatalogExercise {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.exercises[e.ID] = e
	return e
}

func (r *fakeCatalogRepo) Create(ctx context.Context, exercise *domain.CatalogExercise) (primitive.ObjectID, error) {
	for _, e := range r.exercises {
		if e.Name == exercise.Name {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	exercise.ID = primitive.NewObjectID()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeCatalogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.CatalogExercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeCatalogRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.CatalogExercise, error) {
	out := make(map[primitive.ObjectID]domain.CatalogExercise, len(ids))
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetByName(ctx context.Context, name string) (*domain.CatalogExercise, error) {
	for _, e := range r.exercises {
		if e.Name == name {
			copied := e
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCatalogRepo) List(ctx context.Context, activeOnly bool) ([]domain.CatalogExercise, error) {
	out := []domain.CatalogExercise{}
	for _, e := range r.exercises {
		if activeOnly && !e.Active {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeCatalogRepo) Update(ctx context.Context, exercise *domain.CatalogExercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeCatalogRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Active = false
	r.exercises[id] = e
	return nil
}

func (r *fakeCatalogRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

// --- templates ---

type fakeTemplateRepo struct {
	templates map[primitive.ObjectID]domain.Template
	days      map[primitive.ObjectID]domain.TemplateDay
	dayExs    map[primitive.ObjectID]domain.TemplateDayExercise
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates: make(map[primitive.ObjectID]domain.Template),
		days:      make(map[primitive.ObjectID]domain.TemplateDay),
		dayExs:    make(map[primitive.ObjectID]domain.TemplateDayExercise),
	}
}

func (r *fakeTemplateRepo) put(t domain.Template) domain.Template {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.templates[t.ID] = t
	return t
}

func (r *fakeTemplateRepo) putDay(d domain.TemplateDay) domain.TemplateDay {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	r.days[d.ID] = d
	return d
}

func (r *fakeTemplateRepo) putDayExercise(e domain.TemplateDayExercise) domain.TemplateDayExercise {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	r.dayExs[e.ID] = e
	return e
}

func (r *fakeTemplateRepo) Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error) {
	template.ID = primitive.NewObjectID()
	r.templates[template.ID] = *template
	return template.ID, nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (r *fakeTemplateRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.Template, error) {
	out := make(map[primitive.ObjectID]domain.Template, len(ids))
	for _, id := range ids {
		if t, ok := r.templates[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	out := []domain.Template{}
	for _, t := range r.templates {
		if t.TrainerID == trainerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, template *domain.Template) error {
	if _, ok := r.templates[template.ID]; !ok {
		return repository.ErrNotFound
	}
	r.templates[template.ID] = *template
	return nil
}

func (r *fakeTemplateRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	t, ok := r.templates[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Active = false
	r.templates[id] = t
	return nil
}

func (r *fakeTemplateRepo) AddDay(ctx context.Context, day *domain.TemplateDay) (primitive.ObjectID, error) {
	for _, d := range r.days {
		if d.TemplateID == day.TemplateID && d.DayNumber == day.DayNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	day.ID = primitive.NewObjectID()
	r.days[day.ID] = *day
	return day.ID, nil
}

func (r *fakeTemplateRepo) GetDay(ctx context.Context, dayID primitive.ObjectID) (*domain.TemplateDay, error) {
	d, ok := r.days[dayID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := d
	return &copied, nil
}

func (r *fakeTemplateRepo) GetDays(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateDay, error) {
	out := []domain.TemplateDay{}
	for _, d := range r.days {
		if d.TemplateID == templateID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *fakeTemplateRepo) UpdateDay(ctx context.Context, day *domain.TemplateDay) error {
	if _, ok := r.days[day.ID]; !ok {
		return repository.ErrNotFound
	}
	r.days[day.ID] = *day
	return nil
}

func (r *fakeTemplateRepo) DeleteDay(ctx context.Context, dayID primitive.ObjectID) error {
	if _, ok := r.days[dayID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.days, dayID)
	return nil
}

func (r *fakeTemplateRepo) AddDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) (primitive.ObjectID, error) {
	for _, e := range r.dayExs {
		if e.TemplateDayID == exercise.TemplateDayID && e.Position == exercise.Position {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	exercise.ID = primitive.NewObjectID()
	r.dayExs[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *fakeTemplateRepo) GetDayExercise(ctx context.Context, id primitive.ObjectID) (*domain.TemplateDayExercise, error) {
	e, ok := r.dayExs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeTemplateRepo) GetDayExercises(ctx context.Context, dayID primitive.ObjectID) ([]domain.TemplateDayExercise, error) {
	out := []domain.TemplateDayExercise{}
	for _, e := range r.dayExs {
		if e.TemplateDayID == dayID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeTemplateRepo) UpdateDayExercise(ctx context.Context, exercise *domain.TemplateDayExercise) error {
	if _, ok := r.dayExs[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.dayExs[exercise.ID] = *exercise
	return nil
}

func (r *fakeTemplateRepo) DeleteDayExercise(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.dayExs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.dayExs, id)
	return nil
}

func (r *fakeTemplateRepo) DeleteDayExercisesByDay(ctx context.Context, dayID primitive.ObjectID) error {
	for id, e := range r.dayExs {
		if e.TemplateDayID == dayID {
			delete(r.dayExs, id)
		}
	}
	return nil
}

func (r *fakeTemplateRepo) CountByCatalogExercise(ctx context.Context, catalogExerciseID primitive.ObjectID) (int64, error) {
	var n int64
	for _, e := range r.dayExs {
		if e.CatalogExerciseID == catalogExerciseID {
			n++
		}
	}
	return n, nil
}

// --- assignments and snapshots ---

type fakeAssignmentRepo struct {
	assignments map[primitive.ObjectID]domain.Assignment
	snapDays    map[primitive.ObjectID]domain.SnapshotDay
	snapExs     map[primitive.ObjectID]domain.SnapshotExercise
	seq         int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: make(map[primitive.ObjectID]domain.Assignment),
		snapDays:    make(map[primitive.ObjectID]domain.SnapshotDay),
		snapExs:     make(map[primitive.ObjectID]domain.SnapshotExercise),
	}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *domain.Assignment) (primitive.ObjectID, error) {
	// Partial unique index on (participantId, month) where active.
	if assignment.Active {
		for _, a := range r.assignments {
			if a.Active && a.ParticipantID == assignment.ParticipantID && a.Month == assignment.Month {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	assignment.ID = primitive.NewObjectID()
	r.seq++
	assignment.CreatedAt = time.Unix(int64(r.seq), 0)
	r.assignments[assignment.ID] = *assignment
	return assignment.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := a
	return &copied, nil
}

func (r *fakeAssignmentRepo) FindActiveByParticipantAndMonth(ctx context.Context, participantID primitive.ObjectID, month domain.Month) (*domain.Assignment, error) {
	for _, a := range r.assignments {
		if a.Active && a.ParticipantID == participantID && a.Month == month {
			copied := a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAssignmentRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	a, ok := r.assignments[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Active = false
	r.assignments[id] = a
	return nil
}

func (r *fakeAssignmentRepo) GetByParticipantID(ctx context.Context, participantID primitive.ObjectID) ([]domain.Assignment, error) {
	out := []domain.Assignment{}
	for _, a := range r.assignments {
		if a.ParticipantID == participantID {
			out = append(out, a)
		}
	}
	// Month descending, then creation time descending.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeAssignmentRepo) InsertSnapshotDay(ctx context.Context, day *domain.SnapshotDay) (primitive.ObjectID, error) {
	day.ID = primitive.NewObjectID()
	r.snapDays[day.ID] = *day
	return day.ID, nil
}

func (r *fakeAssignmentRepo) InsertSnapshotExercises(ctx context.Context, exercises []domain.SnapshotExercise) error {
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		r.snapExs[exercises[i].ID] = exercises[i]
	}
	return nil
}

func (r *fakeAssignmentRepo) GetSnapshotDays(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotDay, error) {
	out := []domain.SnapshotDay{}
	for _, d := range r.snapDays {
		if d.AssignmentID == assignmentID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *fakeAssignmentRepo) GetSnapshotExercisesByAssignment(ctx context.Context, assignmentID primitive.ObjectID) ([]domain.SnapshotExercise, error) {
	out := []domain.SnapshotExercise{}
	for _, e := range r.snapExs {
		if e.AssignmentID == assignmentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeAssignmentRepo) GetSnapshotExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.SnapshotExercise, error) {
	e, ok := r.snapExs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeAssignmentRepo) FindSnapshotExerciseIDsByName(ctx context.Context, participantID primitive.ObjectID, name string) ([]primitive.ObjectID, error) {
	out := []primitive.ObjectID{}
	for _, e := range r.snapExs {
		if e.ParticipantID == participantID && e.Name == name {
			out = append(out, e.ID)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) UnsetCatalogReference(ctx context.Context, catalogExerciseID primitive.ObjectID) error {
	for id, e := range r.snapExs {
		if e.CatalogExerciseID != nil && *e.CatalogExerciseID == catalogExerciseID {
			e.CatalogExerciseID = nil
			r.snapExs[id] = e
		}
	}
	return nil
}

// --- training logs ---

type fakeTrainingLogRepo struct {
	entries map[primitive.ObjectID]domain.TrainingLogEntry
}

func newFakeTrainingLogRepo() *fakeTrainingLogRepo {
	return &fakeTrainingLogRepo{entries: make(map[primitive.ObjectID]domain.TrainingLogEntry)}
}

func (r *fakeTrainingLogRepo) Create(ctx context.Context, entry *domain.TrainingLogEntry) (primitive.ObjectID, error) {
	entry.ID = primitive.NewObjectID()
	r.entries[entry.ID] = *entry
	return entry.ID, nil
}

func (r *fakeTrainingLogRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingLogEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (r *fakeTrainingLogRepo) Update(ctx context.Context, entry *domain.TrainingLogEntry) error {
	if _, ok := r.entries[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *fakeTrainingLogRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeTrainingLogRepo) CountBySnapshotExerciseIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var n int64
	for _, e := range r.entries {
		if wanted[e.SnapshotExerciseID] {
			n++
		}
	}
	return n, nil
}

func (r *fakeTrainingLogRepo) FindBySnapshotExerciseIDs(ctx context.Context, participantID primitive.ObjectID, ids []primitive.ObjectID, limit int64) ([]domain.TrainingLogEntry, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := []domain.TrainingLogEntry{}
	for _, e := range r.entries {
		if e.ParticipantID == participantID && wanted[e.SnapshotExerciseID] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.After(out[j].LogDate) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
