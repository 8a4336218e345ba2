package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRecordAndCount(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Record(ctx, "CAM001", "0", "/snaps/CAM001/a.jpg", time.Now()))
	require.NoError(t, idx.Record(ctx, "CAM001", "0", "/snaps/CAM001/b.jpg", time.Now()))
	require.NoError(t, idx.Record(ctx, "CAM002", "0", "/snaps/CAM002/c.jpg", time.Now()))

	n, err := idx.Count(ctx, "CAM001")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = idx.Count(ctx, "CAM999")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
