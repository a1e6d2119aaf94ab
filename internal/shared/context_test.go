package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityRoundTrip(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithIdentity(context.Background(), Identity{Username: "jane"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "jane", id.Username)

	_, ok = IdentityFromContext(ContextWithIdentity(context.Background(), Identity{}))
	assert.False(t, ok)
}
