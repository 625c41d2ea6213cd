package usecase

import (
	"context"
	"fmt"

	"github.com/GoArmGo/WorkoutTracker/internal/core/ports"
	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// UnknownIDPolicy decides what happens to a payload entry whose id does not
// match any row of the collection being reconciled.
type UnknownIDPolicy string

const (
	UnknownIDIgnore UnknownIDPolicy = "ignore"
	UnknownIDFail   UnknownIDPolicy = "fail"
)

func ParseUnknownIDPolicy(s string) (UnknownIDPolicy, error) {
	switch p := UnknownIDPolicy(s); p {
	case UnknownIDIgnore, UnknownIDFail:
		return p, nil
	case "":
		return UnknownIDIgnore, nil
	default:
		return "", fmt.Errorf("unknown id policy %q: must be ignore or fail", s)
	}
}

// ReconcileSummary counts what one reconciliation wrote.
type ReconcileSummary struct {
	WorkoutUpdated   bool
	ExercisesCreated int
	ExercisesUpdated int
	ExercisesDeleted int
	SetsCreated      int
	SetsUpdated      int
	SetsDeleted      int
	Ignored          int
}

// Changed reports whether anything was written.
func (s ReconcileSummary) Changed() bool {
	return s.WorkoutUpdated ||
		s.ExercisesCreated+s.ExercisesUpdated+s.ExercisesDeleted+s.SetsCreated+s.SetsUpdated+s.SetsDeleted > 0
}

func (s ReconcileSummary) logAttrs() []any {
	return []any{
		"workout_updated", s.WorkoutUpdated,
		"exercises_created", s.ExercisesCreated,
		"exercises_updated", s.ExercisesUpdated,
		"exercises_deleted", s.ExercisesDeleted,
		"sets_created", s.SetsCreated,
		"sets_updated", s.SetsUpdated,
		"sets_deleted", s.SetsDeleted,
		"ignored", s.Ignored,
	}
}

// Reconciler applies a desired nested state to a stored workout. Each call
// works in two phases inside the caller's transaction: a plan phase that
// does every read and all validation, then an apply phase that only writes.
// Rows are written only when their values change.
type Reconciler struct {
	policy UnknownIDPolicy
}

func NewReconciler(policy UnknownIDPolicy) *Reconciler {
	if policy == "" {
		policy = UnknownIDIgnore
	}
	return &Reconciler{policy: policy}
}

type setPlan struct {
	creates []domain.WorkoutSet
	updates []domain.WorkoutSet
	deletes []int64
	ignored int
}

type exercisePlan struct {
	entry   domain.WorkoutExercise
	create  bool
	changed bool
	sets    *setPlan // nil leaves the sets alone
}

type nestedPlan struct {
	exercises []exercisePlan
	deletes   []int64
	ignored   int
}

type workoutPlan struct {
	workout domain.Workout
	changed bool
	nested  *nestedPlan // nil leaves the exercises alone
}

// ReconcileWorkout applies patch to the workout. Absent scalars are kept;
// a present exercises list becomes the new nested state.
func (r *Reconciler) ReconcileWorkout(ctx context.Context, tx ports.WorkoutTx, ownerID, workoutID int64, patch domain.WorkoutPatch) (ReconcileSummary, error) {
	var sum ReconcileSummary

	current, err := tx.GetWorkout(ctx, workoutID, ownerID)
	if err != nil {
		return sum, err
	}

	plan, err := r.planWorkout(ctx, tx, ownerID, current, patch)
	if err != nil {
		return sum, err
	}

	if plan.changed {
		if err := tx.UpdateWorkout(ctx, &plan.workout); err != nil {
			return sum, err
		}
		sum.WorkoutUpdated = true
	}
	if plan.nested != nil {
		if err := r.applyNested(ctx, tx, current.ID, plan.nested, &sum); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// CreateWorkout inserts a workout and, when given, its exercises and sets.
func (r *Reconciler) CreateWorkout(ctx context.Context, tx ports.WorkoutTx, ownerID int64, in domain.WorkoutInput) (int64, ReconcileSummary, error) {
	var sum ReconcileSummary

	name := domain.NormalizeName(in.Name)
	if name == "" {
		return 0, sum, domain.Invalid("name is required")
	}
	if err := r.checkWorkoutName(ctx, tx, ownerID, name, 0); err != nil {
		return 0, sum, err
	}
	if in.WorkoutTypeID <= 0 {
		return 0, sum, domain.Invalid("workout_type_id is required")
	}
	if err := r.checkWorkoutType(ctx, tx, ownerID, in.WorkoutTypeID); err != nil {
		return 0, sum, err
	}

	nested, err := r.planExercises(ctx, tx, ownerID, nil, in.Exercises)
	if err != nil {
		return 0, sum, err
	}

	w := domain.Workout{
		UserID:        ownerID,
		Name:          name,
		Description:   in.Description,
		WorkoutTypeID: in.WorkoutTypeID,
	}
	if err := tx.CreateWorkout(ctx, &w); err != nil {
		return 0, sum, err
	}
	if err := r.applyNested(ctx, tx, w.ID, nested, &sum); err != nil {
		return 0, sum, err
	}
	return w.ID, sum, nil
}

// AddExercise appends one new entry to the workout.
func (r *Reconciler) AddExercise(ctx context.Context, tx ports.WorkoutTx, ownerID, workoutID int64, entry domain.WorkoutExercisePatch) (int64, ReconcileSummary, error) {
	var sum ReconcileSummary

	if entry.ID != nil {
		return 0, sum, domain.Invalid("id must not be set on a new workout exercise")
	}
	current, err := tx.GetWorkout(ctx, workoutID, ownerID)
	if err != nil {
		return 0, sum, err
	}

	position := 0
	for _, we := range current.Exercises {
		if we.SortOrder >= position {
			position = we.SortOrder + 1
		}
	}

	p, err := r.planExerciseCreate(ctx, tx, ownerID, entry, position)
	if err != nil {
		return 0, sum, err
	}
	plan := &nestedPlan{exercises: []exercisePlan{p}}
	if err := r.applyNested(ctx, tx, current.ID, plan, &sum); err != nil {
		return 0, sum, err
	}
	return plan.exercises[0].entry.ID, sum, nil
}

// UpdateExercise changes one entry of the workout and, when entry carries
// sets, reconciles them. The entry keeps its position.
func (r *Reconciler) UpdateExercise(ctx context.Context, tx ports.WorkoutTx, ownerID, workoutID, workoutExerciseID int64, entry domain.WorkoutExercisePatch) (ReconcileSummary, error) {
	var sum ReconcileSummary

	if entry.ID != nil && *entry.ID != workoutExerciseID {
		return sum, domain.Invalid("id %d does not match workout exercise %d", *entry.ID, workoutExerciseID)
	}
	current, err := tx.GetWorkout(ctx, workoutID, ownerID)
	if err != nil {
		return sum, err
	}
	cur := current.FindExercise(workoutExerciseID)
	if cur == nil {
		return sum, domain.NotFound("workout exercise", workoutExerciseID)
	}

	p, err := r.planExerciseUpdate(ctx, tx, ownerID, cur, entry, cur.SortOrder)
	if err != nil {
		return sum, err
	}
	plan := &nestedPlan{exercises: []exercisePlan{p}}
	err = r.applyNested(ctx, tx, current.ID, plan, &sum)
	return sum, err
}

// RemoveExercise deletes one entry and its sets.
func (r *Reconciler) RemoveExercise(ctx context.Context, tx ports.WorkoutTx, ownerID, workoutID, workoutExerciseID int64) (ReconcileSummary, error) {
	var sum ReconcileSummary

	current, err := tx.GetWorkout(ctx, workoutID, ownerID)
	if err != nil {
		return sum, err
	}
	if current.FindExercise(workoutExerciseID) == nil {
		return sum, domain.NotFound("workout exercise", workoutExerciseID)
	}
	plan := &nestedPlan{deletes: []int64{workoutExerciseID}}
	err = r.applyNested(ctx, tx, current.ID, plan, &sum)
	return sum, err
}

func (r *Reconciler) planWorkout(ctx context.Context, tx ports.WorkoutTx, ownerID int64, current *domain.Workout, patch domain.WorkoutPatch) (*workoutPlan, error) {
	next := *current
	next.WorkoutType = nil
	next.Exercises = nil

	if patch.Name.Set {
		if patch.Name.Null {
			return nil, domain.Invalid("name must not be null")
		}
		name := domain.NormalizeName(patch.Name.Value)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		if name != current.Name {
			if err := r.checkWorkoutName(ctx, tx, ownerID, name, current.ID); err != nil {
				return nil, err
			}
		}
		next.Name = name
	}
	if patch.Description.Set {
		next.Description = patch.Description.Ptr()
	}
	if patch.WorkoutTypeID.Set {
		if patch.WorkoutTypeID.Null {
			return nil, domain.Invalid("workout_type_id must not be null")
		}
		if patch.WorkoutTypeID.Value != current.WorkoutTypeID {
			if err := r.checkWorkoutType(ctx, tx, ownerID, patch.WorkoutTypeID.Value); err != nil {
				return nil, err
			}
		}
		next.WorkoutTypeID = patch.WorkoutTypeID.Value
	}

	plan := &workoutPlan{
		workout: next,
		changed: next.Name != current.Name ||
			!equalPtr(next.Description, current.Description) ||
			next.WorkoutTypeID != current.WorkoutTypeID,
	}

	if patch.Exercises != nil {
		nested, err := r.planExercises(ctx, tx, ownerID, current.Exercises, *patch.Exercises)
		if err != nil {
			return nil, err
		}
		plan.nested = nested
	}
	return plan, nil
}

// planExercises matches entries against existing by id. Matched entries are
// updated, id-less entries created, unmatched ids handled by the policy and
// existing rows that no entry names are deleted.
func (r *Reconciler) planExercises(ctx context.Context, tx ports.WorkoutTx, ownerID int64, existing []domain.WorkoutExercise, entries []domain.WorkoutExercisePatch) (*nestedPlan, error) {
	byID := make(map[int64]*domain.WorkoutExercise, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}
	seen := make(map[int64]bool, len(entries))

	plan := &nestedPlan{}
	position := 0
	for _, e := range entries {
		var (
			p   exercisePlan
			err error
		)
		if e.ID != nil {
			cur, ok := byID[*e.ID]
			if !ok {
				if err := r.unknown("workout exercise", *e.ID); err != nil {
					return nil, err
				}
				plan.ignored++
				continue
			}
			if seen[cur.ID] {
				return nil, domain.Invalid("workout exercise %d is listed more than once", cur.ID)
			}
			seen[cur.ID] = true
			p, err = r.planExerciseUpdate(ctx, tx, ownerID, cur, e, position)
		} else {
			p, err = r.planExerciseCreate(ctx, tx, ownerID, e, position)
		}
		if err != nil {
			return nil, err
		}
		plan.exercises = append(plan.exercises, p)
		position++
	}

	for _, we := range existing {
		if !seen[we.ID] {
			plan.deletes = append(plan.deletes, we.ID)
		}
	}
	return plan, nil
}

func (r *Reconciler) planExerciseCreate(ctx context.Context, tx ports.WorkoutTx, ownerID int64, e domain.WorkoutExercisePatch, position int) (exercisePlan, error) {
	if !e.ExerciseID.Present() {
		return exercisePlan{}, domain.Invalid("exercise_id is required for a new workout exercise")
	}
	if err := r.checkExercise(ctx, tx, ownerID, e.ExerciseID.Value); err != nil {
		return exercisePlan{}, err
	}

	var setEntries []domain.WorkoutSetPatch
	if e.Sets != nil {
		setEntries = *e.Sets
	}
	sets, err := r.planSets(nil, setEntries)
	if err != nil {
		return exercisePlan{}, err
	}

	return exercisePlan{
		entry: domain.WorkoutExercise{
			ExerciseID: e.ExerciseID.Value,
			Notes:      e.Notes.Ptr(),
			SortOrder:  position,
		},
		create: true,
		sets:   sets,
	}, nil
}

func (r *Reconciler) planExerciseUpdate(ctx context.Context, tx ports.WorkoutTx, ownerID int64, cur *domain.WorkoutExercise, e domain.WorkoutExercisePatch, position int) (exercisePlan, error) {
	next := *cur
	next.Sets = nil
	next.SortOrder = position

	if e.ExerciseID.Set {
		if e.ExerciseID.Null {
			return exercisePlan{}, domain.Invalid("exercise_id must not be null")
		}
		if e.ExerciseID.Value != cur.ExerciseID {
			if err := r.checkExercise(ctx, tx, ownerID, e.ExerciseID.Value); err != nil {
				return exercisePlan{}, err
			}
		}
		next.ExerciseID = e.ExerciseID.Value
	}
	if e.Notes.Set {
		next.Notes = e.Notes.Ptr()
	}

	p := exercisePlan{
		entry: next,
		changed: next.ExerciseID != cur.ExerciseID ||
			!equalPtr(next.Notes, cur.Notes) ||
			next.SortOrder != cur.SortOrder,
	}
	if e.Sets != nil {
		sets, err := r.planSets(cur.Sets, *e.Sets)
		if err != nil {
			return exercisePlan{}, err
		}
		p.sets = sets
	}
	return p, nil
}

// planSets applies the same id rules to one exercise's sets. A new set must
// carry set_number; weight and reps default to zero.
func (r *Reconciler) planSets(existing []domain.WorkoutSet, entries []domain.WorkoutSetPatch) (*setPlan, error) {
	byID := make(map[int64]domain.WorkoutSet, len(existing))
	for _, s := range existing {
		byID[s.ID] = s
	}
	seen := make(map[int64]bool, len(entries))

	plan := &setPlan{}
	for _, e := range entries {
		if e.ID == nil {
			if !e.SetNumber.Present() {
				return nil, domain.ErrMissingSetNumber
			}
			s := domain.WorkoutSet{SetNumber: e.SetNumber.Value}
			if err := applySetFields(&s, e); err != nil {
				return nil, err
			}
			plan.creates = append(plan.creates, s)
			continue
		}

		cur, ok := byID[*e.ID]
		if !ok {
			if err := r.unknown("workout set", *e.ID); err != nil {
				return nil, err
			}
			plan.ignored++
			continue
		}
		if seen[cur.ID] {
			return nil, domain.Invalid("workout set %d is listed more than once", cur.ID)
		}
		seen[cur.ID] = true

		next := cur
		if err := applySetFields(&next, e); err != nil {
			return nil, err
		}
		if next != cur {
			plan.updates = append(plan.updates, next)
		}
	}

	for _, s := range existing {
		if !seen[s.ID] {
			plan.deletes = append(plan.deletes, s.ID)
		}
	}
	return plan, nil
}

// applySetFields copies the supplied fields onto s and validates the result.
func applySetFields(s *domain.WorkoutSet, e domain.WorkoutSetPatch) error {
	fields := []struct {
		name string
		opt  domain.Optional[int]
		dst  *int
	}{
		{"set_number", e.SetNumber, &s.SetNumber},
		{"weight", e.Weight, &s.Weight},
		{"reps", e.Reps, &s.Reps},
	}
	for _, f := range fields {
		if !f.opt.Set {
			continue
		}
		if f.opt.Null {
			return domain.Invalid("%s must not be null", f.name)
		}
		*f.dst = f.opt.Value
	}

	switch {
	case s.SetNumber <= 0:
		return domain.Invalid("set_number must be positive")
	case s.Weight < 0:
		return domain.Invalid("weight must not be negative")
	case s.Reps < 0:
		return domain.Invalid("reps must not be negative")
	}
	return nil
}

func (r *Reconciler) applyNested(ctx context.Context, tx ports.WorkoutTx, workoutID int64, plan *nestedPlan, sum *ReconcileSummary) error {
	sum.Ignored += plan.ignored

	for _, id := range plan.deletes {
		if err := tx.DeleteWorkoutExercise(ctx, id); err != nil {
			return err
		}
		sum.ExercisesDeleted++
	}

	for i := range plan.exercises {
		p := &plan.exercises[i]
		p.entry.WorkoutID = workoutID

		switch {
		case p.create:
			if err := tx.CreateWorkoutExercise(ctx, &p.entry); err != nil {
				return err
			}
			sum.ExercisesCreated++
		case p.changed:
			if err := tx.UpdateWorkoutExercise(ctx, &p.entry); err != nil {
				return err
			}
			sum.ExercisesUpdated++
		}

		if p.sets != nil {
			if err := applySets(ctx, tx, p.entry.ID, p.sets, sum); err != nil {
				return err
			}
		}
	}
	return nil
}

func applySets(ctx context.Context, tx ports.WorkoutTx, workoutExerciseID int64, plan *setPlan, sum *ReconcileSummary) error {
	sum.Ignored += plan.ignored

	for _, id := range plan.deletes {
		if err := tx.DeleteWorkoutSet(ctx, id); err != nil {
			return err
		}
		sum.SetsDeleted++
	}
	for i := range plan.updates {
		if err := tx.UpdateWorkoutSet(ctx, &plan.updates[i]); err != nil {
			return err
		}
		sum.SetsUpdated++
	}
	for i := range plan.creates {
		s := &plan.creates[i]
		s.WorkoutExerciseID = workoutExerciseID
		if err := tx.CreateWorkoutSet(ctx, s); err != nil {
			return err
		}
		sum.SetsCreated++
	}
	return nil
}

func (r *Reconciler) unknown(entity string, id int64) error {
	if r.policy == UnknownIDFail {
		return domain.NotFound(entity, id)
	}
	return nil
}

func (r *Reconciler) checkWorkoutName(ctx context.Context, tx ports.WorkoutTx, ownerID int64, name string, excludeID int64) error {
	taken, err := tx.WorkoutNameTaken(ctx, ownerID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("workout %q already exists", name)
	}
	return nil
}

func (r *Reconciler) checkWorkoutType(ctx context.Context, tx ports.WorkoutTx, ownerID, id int64) error {
	ok, err := tx.WorkoutTypeOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("workout type", id)
	}
	return nil
}

func (r *Reconciler) checkExercise(ctx context.Context, tx ports.WorkoutTx, ownerID, id int64) error {
	ok, err := tx.ExerciseOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("exercise", id)
	}
	return nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
