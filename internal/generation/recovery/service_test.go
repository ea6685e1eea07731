package recovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/internal/store"
	"github.com/verustcode/valreport/pkg/errors"
)

func createGeneration(t *testing.T, s store.Store, id string, status model.GenerationStatus, age time.Duration) {
	t.Helper()
	require.NoError(t, s.Generation().Create(&model.Generation{
		ID:        id,
		RecordID:  "VAL-" + id,
		Format:    "pdf",
		Source:    model.GenerationSourceAPI,
		Status:    status,
		CreatedAt: time.Now().Add(-age),
	}))
}

func TestRecover_NoGenerations(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	res, err := NewService(s, 30*time.Minute).Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestRecover_MarksStalePending(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	createGeneration(t, s, "stale", model.GenerationStatusPending, 2*time.Hour)
	createGeneration(t, s, "fresh", model.GenerationStatusPending, time.Minute)
	createGeneration(t, s, "done", model.GenerationStatusCompleted, 2*time.Hour)

	res, err := NewService(s, 30*time.Minute).Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 2, Failed: 1, Skipped: 1}, res)

	stale, err := s.Generation().GetByID("stale")
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusFailed, stale.Status)
	assert.Equal(t, string(errors.ErrCodeInterrupted), stale.ErrorCode)
	assert.Contains(t, stale.ErrorMessage, "interrupted")

	fresh, err := s.Generation().GetByID("fresh")
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusPending, fresh.Status)

	done, err := s.Generation().GetByID("done")
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusCompleted, done.Status)
}

func TestRecover_PagesThroughAllPending(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	n := scanPageSize + 5
	for i := 0; i < n; i++ {
		createGeneration(t, s, fmt.Sprintf("g%03d", i), model.GenerationStatusPending, time.Hour)
	}

	res, err := NewService(s, 10*time.Minute).Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, res.Scanned)
	assert.Equal(t, n, res.Failed)

	counts, err := s.Generation().CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(n), counts[model.GenerationStatusFailed])
	assert.Zero(t, counts[model.GenerationStatusPending])
}

func TestRecover_Disabled(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	createGeneration(t, s, "stale", model.GenerationStatusPending, 48*time.Hour)

	res, err := NewService(s, 0).Recover(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)

	gen, err := s.Generation().GetByID("stale")
	require.NoError(t, err)
	assert.Equal(t, model.GenerationStatusPending, gen.Status)
}

func TestRecover_CanceledContext(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(s, time.Minute).Recover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
