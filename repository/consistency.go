package repository

import "context"

// ConsistencyLevel defines the consistency requirements for read operations of a RecordStore.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database. It is the default because
	// SaveEntity reads the stored version right before writing.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from replica databases, for pure queries that can
	// tolerate slightly stale data.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level.
const ConsistencyLevelKey contextKey = "repository.consistency_level"

// WithStrongConsistency returns a context that makes stores read from the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows stores to read from replicas.
//
//	ctx = repository.WithEventualConsistency(ctx)
//	customers, err := repository.All[*customer.Customer](ctx, repo, false)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, StrongConsistency if unset.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
