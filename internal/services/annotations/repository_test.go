package annotations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	"github.com/cosmic-canvas/canvas-api/internal/storage"
)

func TestRepositoryListEmptyWhenUnwritten(t *testing.T) {
	repo := NewRepository(storage.NewMemory())

	records := repo.List(context.Background(), "andromeda-galaxy")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRepositoryListDegradesOnCorruptStore(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, StorageKey, "{definitely not json"))

	repo := NewRepository(backend)
	assert.Empty(t, repo.List(ctx, "andromeda-galaxy"), "corrupt storage reads as no records")
}

func TestRepositoryReplaceFailsOnCorruptStore(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, StorageKey, "{definitely not json"))

	repo := NewRepository(backend)
	err := repo.Replace(ctx, "andromeda-galaxy", []models.Annotation{{ID: "a1"}})
	require.Error(t, err, "writing over an unreadable store would drop other images' records")

	// The corrupt blob is left untouched.
	value, ok, err := backend.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{definitely not json", value)
}

func TestRepositoryMutate(t *testing.T) {
	ctx := context.Background()

	t.Run("callback sees the current set and its result is persisted", func(t *testing.T) {
		repo := NewRepository(storage.NewMemory())
		require.NoError(t, repo.Replace(ctx, "image-a", []models.Annotation{{ID: "a1"}}))

		err := repo.Mutate(ctx, "image-a", func(records []models.Annotation) ([]models.Annotation, error) {
			require.Len(t, records, 1)
			return append(records, models.Annotation{ID: "a2"}), nil
		})
		require.NoError(t, err)
		assert.Len(t, repo.List(ctx, "image-a"), 2)
	})

	t.Run("callback error aborts without writing", func(t *testing.T) {
		repo := NewRepository(storage.NewMemory())
		require.NoError(t, repo.Replace(ctx, "image-a", []models.Annotation{{ID: "a1"}}))

		err := repo.Mutate(ctx, "image-a", func(records []models.Annotation) ([]models.Annotation, error) {
			return nil, assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)
		assert.Len(t, repo.List(ctx, "image-a"), 1, "aborted cycle leaves the stored set untouched")
	})
}

func TestRepositoryPartitionsByImage(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(storage.NewMemory())

	require.NoError(t, repo.Replace(ctx, "image-a", []models.Annotation{
		{ID: "a1", ImageID: "image-a", X: 0.1, Y: 0.2},
		{ID: "a2", ImageID: "image-a", X: 0.3, Y: 0.4},
	}))
	require.NoError(t, repo.Replace(ctx, "image-b", []models.Annotation{
		{ID: "b1", ImageID: "image-b", X: 0.5, Y: 0.5},
	}))

	listA := repo.List(ctx, "image-a")
	require.Len(t, listA, 2)
	assert.Equal(t, "a1", listA[0].ID, "insertion order is preserved")
	assert.Equal(t, "a2", listA[1].ID)

	require.NoError(t, repo.Replace(ctx, "image-a", nil))
	assert.Empty(t, repo.List(ctx, "image-a"))
	assert.Len(t, repo.List(ctx, "image-b"), 1, "clearing one image leaves the other partitions alone")
}
