package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordAndShutdown(t *testing.T) {
	obs, err := New("price-finder-test")
	require.NoError(t, err)

	ctx := context.Background()
	obs.RecordJobProcessed(ctx, "fetch-prices", "completed")
	obs.RecordJobDuration(ctx, "fetch-prices", 120*time.Millisecond, "completed")

	assert.NoError(t, obs.Shutdown(ctx))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "fetch-prices", "failed")
	obs.RecordJobDuration(ctx, "fetch-prices", time.Second, "failed")
	assert.NoError(t, obs.Shutdown(ctx))

	empty := &Observability{}
	empty.RecordJobProcessed(ctx, "fetch-prices", "failed")
	assert.NoError(t, empty.Shutdown(ctx))
}
