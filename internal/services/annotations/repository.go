package annotations

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/cosmic-canvas/canvas-api/internal/models"
	"github.com/cosmic-canvas/canvas-api/internal/storage"
	apperrors "github.com/cosmic-canvas/canvas-api/pkg/errors"
)

// StorageKey is the namespace key holding the whole annotation state: a JSON
// object mapping imageID to an ordered annotation array. The key matches the
// browser client's local storage entry so exported state stays interchangeable.
const StorageKey = "cosmic-canvas-annotations"

// RepositoryImpl implements Repository over a keyed storage backend.
type RepositoryImpl struct {
	backend storage.Backend

	// mu serializes read-modify-write cycles within this process. A second
	// process writing the same backend still races whole-blob writes; that is
	// a documented limitation of the storage layout, not something the
	// repository papers over.
	mu sync.Mutex
}

// NewRepository creates an annotation repository over the given backend.
func NewRepository(backend storage.Backend) *RepositoryImpl {
	return &RepositoryImpl{backend: backend}
}

// List returns the stored annotation set for an image in insertion order.
// Absent or unreadable storage degrades to an empty set.
func (r *RepositoryImpl) List(ctx context.Context, imageID string) []models.Annotation {
	store, err := r.load(ctx)
	if err != nil {
		log.Printf("annotations: degrading to empty set for %q: %v", imageID, err)
		return []models.Annotation{}
	}
	records, ok := store[imageID]
	if !ok {
		return []models.Annotation{}
	}
	return records
}

// Mutate runs fn against one image's current set under the repository lock
// and persists the result. Unlike List, an unreadable existing blob fails the
// cycle: silently replacing the whole store would discard every other image's
// records.
func (r *RepositoryImpl) Mutate(ctx context.Context, imageID string, fn func(records []models.Annotation) ([]models.Annotation, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, err := r.load(ctx)
	if err != nil {
		return apperrors.StorageError("write", err)
	}

	records, err := fn(store[imageID])
	if err != nil {
		return err
	}
	if records == nil {
		records = []models.Annotation{}
	}
	store[imageID] = records

	data, err := json.Marshal(store)
	if err != nil {
		return apperrors.StorageError("write", err)
	}
	if err := r.backend.Set(ctx, StorageKey, string(data)); err != nil {
		return apperrors.StorageError("write", err)
	}
	return nil
}

// Replace overwrites one image's annotation set and persists the full store.
func (r *RepositoryImpl) Replace(ctx context.Context, imageID string, records []models.Annotation) error {
	return r.Mutate(ctx, imageID, func([]models.Annotation) ([]models.Annotation, error) {
		return records, nil
	})
}

func (r *RepositoryImpl) load(ctx context.Context) (map[string][]models.Annotation, error) {
	value, ok, err := r.backend.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	store := make(map[string][]models.Annotation)
	if !ok || value == "" {
		return store, nil
	}
	if err := json.Unmarshal([]byte(value), &store); err != nil {
		return nil, err
	}
	return store, nil
}
