package adapters

import (
	"context"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// readsFromReplica reports whether a query in ctx may be served by a replica.
func readsFromReplica(ctx context.Context, hasReplica bool) bool {
	return hasReplica && repository.GetConsistencyLevel(ctx) == repository.EventualConsistency
}
