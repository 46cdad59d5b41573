package domain

import (
	"fmt"
	"reflect"
	"sort"
)

// Reserved field names are owned by Entity and Aggregate bookkeeping and can never be
// addressed through a FieldAccessor.
const (
	FieldID                = "id"
	FieldVersion           = "version"
	FieldCreatedAt         = "createdAt"
	FieldUpdatedAt         = "updatedAt"
	FieldUncommittedEvents = "uncommittedEvents"
)

var reservedFields = map[string]struct{}{
	FieldID:                {},
	FieldVersion:           {},
	FieldCreatedAt:         {},
	FieldUpdatedAt:         {},
	FieldUncommittedEvents: {},
}

// IsReservedField reports whether name is one of the bookkeeping fields that are skipped
// when changes are applied.
func IsReservedField(name string) bool {
	_, reserved := reservedFields[name]
	return reserved
}

// FieldAccessor reads and writes the domain fields of one entity instance by name.
type FieldAccessor interface {
	FieldNames() []string
	FieldValue(name string) (any, error)
	CanSetFieldValue(name string, value any) error
	SetFieldValue(name string, value any) error
}

// FieldDef describes a single named field of T.
type FieldDef[T any] struct {
	name   string
	get    func(*T) any
	accept func(any) bool
	set    func(*T, any)
}

// Field defines a typed field of T. The setter only ever receives values of type V.
func Field[T any, V any](name string, getter func(*T) V, setter func(*T, V)) FieldDef[T] {
	return FieldDef[T]{
		name: name,
		get: func(target *T) any {
			return getter(target)
		},
		accept: func(value any) bool {
			_, ok := convertFieldValue[V](value)
			return ok
		},
		set: func(target *T, value any) {
			converted, _ := convertFieldValue[V](value)
			setter(target, converted)
		},
	}
}

func convertFieldValue[V any](value any) (V, bool) {
	var zero V

	if value == nil {
		return zero, isNillable(reflect.TypeFor[V]())
	}

	converted, ok := value.(V)

	return converted, ok
}

func isNillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// FieldRegistry is the static, per-type table of addressable fields. Build it once per
// entity type, usually in a package-level var, and Bind it to instances.
type FieldRegistry[T any] struct {
	fields map[string]FieldDef[T]
	names  []string
}

// NewFieldRegistry builds a registry. It panics on empty, duplicate or reserved names
// since those are programming errors in the entity definition.
func NewFieldRegistry[T any](defs ...FieldDef[T]) *FieldRegistry[T] {
	registry := &FieldRegistry[T]{
		fields: make(map[string]FieldDef[T], len(defs)),
		names:  make([]string, 0, len(defs)),
	}

	for _, def := range defs {
		switch {
		case def.name == "":
			panic("domain: field registry: empty field name")
		case IsReservedField(def.name):
			panic(fmt.Sprintf("domain: field registry: %q is a reserved field", def.name))
		}

		if _, exists := registry.fields[def.name]; exists {
			panic(fmt.Sprintf("domain: field registry: duplicate field %q", def.name))
		}

		registry.fields[def.name] = def
		registry.names = append(registry.names, def.name)
	}

	sort.Strings(registry.names)

	return registry
}

// Names returns the sorted field names.
func (r *FieldRegistry[T]) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)

	return names
}

// Bind returns a FieldAccessor operating on target.
func (r *FieldRegistry[T]) Bind(target *T) FieldAccessor {
	return boundFields[T]{registry: r, target: target}
}

type boundFields[T any] struct {
	registry *FieldRegistry[T]
	target   *T
}

func (b boundFields[T]) FieldNames() []string {
	return b.registry.Names()
}

func (b boundFields[T]) FieldValue(name string) (any, error) {
	def, ok := b.registry.fields[name]
	if !ok {
		return nil, unknownFieldError(name)
	}

	return def.get(b.target), nil
}

func (b boundFields[T]) CanSetFieldValue(name string, value any) error {
	def, ok := b.registry.fields[name]
	if !ok {
		return unknownFieldError(name)
	}

	if !def.accept(value) {
		return invalidFieldValueError(name, value)
	}

	return nil
}

func (b boundFields[T]) SetFieldValue(name string, value any) error {
	if err := b.CanSetFieldValue(name, value); err != nil {
		return err
	}

	b.registry.fields[name].set(b.target, value)

	return nil
}
