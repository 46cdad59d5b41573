package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

func Test_ReadsFromReplica(t *testing.T) {
	ctx := t.Context()

	assert.False(t, readsFromReplica(ctx, true), "default is strong consistency")
	assert.False(t, readsFromReplica(repository.WithStrongConsistency(ctx), true))
	assert.True(t, readsFromReplica(repository.WithEventualConsistency(ctx), true))
	assert.False(t, readsFromReplica(repository.WithEventualConsistency(ctx), false), "no replica configured")
}
