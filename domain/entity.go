package domain

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// State is the bookkeeping part of an entity as it is persisted. A zero UpdatedAt means
// the entity has never been updated.
type State struct {
	ID        Identifier
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint
}

// EntityOption configures an Entity at construction time.
type EntityOption func(*Entity) error

// WithClock replaces the time source used for createdAt and updatedAt.
func WithClock(clock func() time.Time) EntityOption {
	return func(e *Entity) error {
		if clock == nil {
			return NewValidationError("clock", "must not be nil")
		}

		e.clock = clock

		return nil
	}
}

// Entity carries identity, timestamps, the optimistic locking version and the dirty
// changeset of the most recent update. Embed it in concrete entity types.
type Entity struct {
	id               Identifier
	createdAt        time.Time
	updatedAt        time.Time
	version          uint
	persistedVersion uint
	dirty            Changeset
	clock            func() time.Time
}

// NewEntity creates a fresh entity with version 0 and createdAt set to now.
func NewEntity(id Identifier, options ...EntityOption) (Entity, error) {
	if id == nil || id.IsEmpty() {
		return Entity{}, ErrEmptyIdentifier
	}

	e := Entity{
		id:    id,
		clock: defaultClock,
		dirty: Changeset{},
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Entity{}, err
		}
	}

	e.createdAt = e.clock()

	return e, nil
}

// EntityFromState reconstructs an entity from persisted state without dirty tracking.
func EntityFromState(state State, options ...EntityOption) (Entity, error) {
	if state.ID == nil || state.ID.IsEmpty() {
		return Entity{}, ErrEmptyIdentifier
	}

	e := Entity{
		id:    state.ID,
		clock: defaultClock,
		dirty: Changeset{},
	}

	for _, option := range options {
		if err := option(&e); err != nil {
			return Entity{}, err
		}
	}

	e.Hydrate(state)

	return e, nil
}

func defaultClock() time.Time {
	return time.Now().UTC()
}

func (e *Entity) now() time.Time {
	if e.clock == nil {
		return defaultClock()
	}

	return e.clock()
}

func (e *Entity) ID() Identifier {
	return e.id
}

func (e *Entity) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns the last update time and false if the entity was never updated.
func (e *Entity) UpdatedAt() (time.Time, bool) {
	return e.updatedAt, !e.updatedAt.IsZero()
}

func (e *Entity) Version() uint {
	return e.version
}

// PersistedVersion is the version the entity had when it was last loaded from or written
// to storage. It is the expected version for optimistic locking.
func (e *Entity) PersistedVersion() uint {
	return e.persistedVersion
}

func (e *Entity) IsDirty() bool {
	return len(e.dirty) > 0
}

// Dirty returns a copy of the changeset collected by the most recent update.
func (e *Entity) Dirty() Changeset {
	return e.dirty.Clone()
}

// State returns the persisted bookkeeping fields.
func (e *Entity) State() State {
	return State{
		ID:        e.id,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
		Version:   e.version,
	}
}

// Hydrate overwrites timestamps and version with authoritative values from storage.
// Identity and the dirty changeset are left untouched.
func (e *Entity) Hydrate(state State) {
	e.createdAt = state.CreatedAt
	e.updatedAt = state.UpdatedAt
	e.version = state.Version
	e.persistedVersion = state.Version
}

// Equals reports whether other is an entity with the same identity.
func (e *Entity) Equals(other Identifiable) bool {
	if other == nil {
		return false
	}

	return SameIdentity(e.id, other.ID())
}

// Touch marks a mutation without a field diff: updatedAt becomes now and version grows by one.
// The entity stays clean, but a repository still writes it because its version moved past
// the persisted version.
func (e *Entity) Touch() {
	e.updatedAt = e.now()
	e.version++
}

// UpdateEntity applies all changed values in changes to the fields behind accessor.
// Reserved bookkeeping fields are skipped. When nothing changed, the returned changeset is
// empty and neither version nor updatedAt move. Otherwise every changed field is applied,
// the entity is touched once and the changeset is returned.
// An unknown field or a value of the wrong type fails with a *StructuralError and nothing is applied.
func (e *Entity) UpdateEntity(fields FieldAccessor, changes Changes) (Changeset, error) {
	changeset, err := e.collectChanges(fields, changes)
	if err != nil {
		return Changeset{}, err
	}

	if changeset.IsEmpty() {
		return changeset, nil
	}

	if err = e.applyChanges(fields, changeset); err != nil {
		return Changeset{}, err
	}

	e.Touch()
	e.dirty = changeset

	return changeset.Clone(), nil
}

func (e *Entity) collectChanges(fields FieldAccessor, changes Changes) (Changeset, error) {
	e.dirty = Changeset{}

	collected := Changeset{}

	for _, name := range sortedChangeNames(changes) {
		newValue := changes[name]

		currentValue, err := fields.FieldValue(name)
		if err != nil {
			return Changeset{}, err
		}

		if !hasChanged(currentValue, newValue) {
			continue
		}

		if err = fields.CanSetFieldValue(name, newValue); err != nil {
			return Changeset{}, err
		}

		collected.record(name, currentValue, newValue)
	}

	return collected, nil
}

func (e *Entity) applyChanges(fields FieldAccessor, changeset Changeset) error {
	for _, name := range changeset.Fields() {
		newValue, _ := changeset.New(name)

		if err := fields.SetFieldValue(name, newValue); err != nil {
			return err
		}
	}

	return nil
}

func sortedChangeNames(changes Changes) []string {
	names := make([]string, 0, len(changes))

	for name := range changes {
		if IsReservedField(name) {
			continue
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func hasChanged(current, proposed any) bool {
	if currentTime, ok := current.(time.Time); ok {
		proposedTime, ok := proposed.(time.Time)
		return !ok || !currentTime.Equal(proposedTime)
	}

	if currentText, ok := canonicalString(current); ok {
		proposedText, ok := canonicalString(proposed)
		if !ok {
			return true
		}

		return currentText != proposedText
	}

	if current == nil || proposed == nil {
		return !(isNilValue(current) && isNilValue(proposed))
	}

	currentType := reflect.TypeOf(current)
	if currentType != reflect.TypeOf(proposed) {
		return true
	}

	if currentType.Comparable() {
		return current != proposed
	}

	return !reflect.DeepEqual(current, proposed)
}

func canonicalString(value any) (string, bool) {
	stringer, ok := value.(fmt.Stringer)
	if !ok || isNilValue(value) {
		return "", false
	}

	return stringer.String(), true
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

// IsRecentlyCreated reports whether the entity was created within the given window.
func (e *Entity) IsRecentlyCreated(within time.Duration) bool {
	return !e.createdAt.Before(e.now().Add(-within))
}

// IsRecentlyUpdated reports whether the entity was updated within the given window.
func (e *Entity) IsRecentlyUpdated(within time.Duration) bool {
	if e.updatedAt.IsZero() {
		return false
	}

	return !e.updatedAt.Before(e.now().Add(-within))
}

func (e *Entity) Age() time.Duration {
	return e.now().Sub(e.createdAt)
}

func (e *Entity) IsOlderThan(d time.Duration) bool {
	return e.Age() > d
}

// Metadata returns a flat description of the bookkeeping state for audit logs.
func (e *Entity) Metadata() map[string]any {
	metadata := map[string]any{
		"entity_id":   e.id.String(),
		"version":     e.version,
		"created_at":  e.createdAt.Format(time.RFC3339),
		"updated_at":  nil,
		"age_seconds": int64(e.Age().Seconds()),
	}

	if !e.updatedAt.IsZero() {
		metadata["updated_at"] = e.updatedAt.Format(time.RFC3339)
	}

	return metadata
}
