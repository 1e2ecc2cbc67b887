package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/sheets"
)

var _ sheets.RecordMirror = (*Store)(nil)
var _ sheets.RowReader = (*Store)(nil)

func TestStoreUpsertAndRemove(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Upsert(ctx, "Tasks", 1, []string{"1", "a"}))
	require.NoError(t, s.Upsert(ctx, "Tasks", 1, []string{"1", "b"}))
	require.NoError(t, s.Upsert(ctx, "Income", 1, []string{"1", "150.00"}))

	rows, err := s.Rows(ctx, "Tasks")
	require.NoError(t, err)
	assert.Equal(t, map[int64][]string{1: {"1", "b"}}, rows)

	// Returned rows are copies.
	rows[1][1] = "mutated"
	again, _ := s.Rows(ctx, "Tasks")
	assert.Equal(t, "b", again[1][1])

	require.NoError(t, s.Remove(ctx, "Tasks", 1))
	require.NoError(t, s.Remove(ctx, "Tasks", 99))
	require.NoError(t, s.Remove(ctx, "Unknown", 1))

	rows, _ = s.Rows(ctx, "Tasks")
	assert.Empty(t, rows)
	income, _ := s.Rows(ctx, "Income")
	assert.Len(t, income, 1)
}
