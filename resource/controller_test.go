package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(context.Background(), 60))
	assert.Equal(t, int64(60), c.MemoryUsage())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.AcquireMemory(ctx, 50)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())

	c.ReleaseMemory(60)
	require.NoError(t, c.AcquireMemory(context.Background(), 100))
	assert.Equal(t, int64(100), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(context.Background(), 1<<40))
	c.ReleaseMemory(1 << 39)
	assert.Equal(t, int64(1<<39), c.MemoryUsage())
}

func TestController_Workers(t *testing.T) {
	c := NewController(Config{MaxWorkers: 2})
	assert.Equal(t, 2, c.Workers())

	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.False(t, c.TryAcquireWorker())

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())

	assert.Equal(t, 1, NewController(Config{}).Workers())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.Equal(t, 1, c.Workers())
	require.NoError(t, c.AcquireWorker(context.Background()))
	c.ReleaseWorker()
	require.NoError(t, c.AcquireMemory(context.Background(), 10))
	require.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.Zero(t, c.MemoryUsage())
}

func TestRateLimitedWriter(t *testing.T) {
	c := NewController(Config{UploadBytesPerSec: 1000})

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)

	// Larger than the burst; split into burst-sized waits.
	n, err := w.Write(make([]byte, 1500))
	require.NoError(t, err)
	assert.Equal(t, 1500, n)
	assert.Equal(t, 1500, buf.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRateLimitedWriter(ctx, &buf, c).Write(make([]byte, 10))
	require.Error(t, err)
}
