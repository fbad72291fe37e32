package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/store"
)

func TestHealthService(t *testing.T) {
	t.Run("degraded before the dataset loads", func(t *testing.T) {
		st := store.New(filepath.Join(t.TempDir(), "absent.csv"), nil)
		hs := NewHealthService(st, "test", nil)

		health := hs.HealthCheck(context.Background())
		assert.Equal(t, "degraded", health["status"])
		assert.Equal(t, false, health["dataset_loaded"])

		ready := hs.ReadinessCheck(context.Background())
		assert.Equal(t, false, ready["ready"])
	})

	t.Run("healthy with dataset details once loaded", func(t *testing.T) {
		ds := loadedService(t, 2018, 2019)
		hs := NewHealthService(dsStore(t, ds), "test", nil)

		health := hs.HealthCheck(context.Background())
		assert.Equal(t, "healthy", health["status"])
		assert.Equal(t, true, health["dataset_loaded"])
		assert.Equal(t, 13, health["regions"])
		assert.Equal(t, 26, health["observations"])

		ready := hs.ReadinessCheck(context.Background())
		assert.Equal(t, true, ready["ready"])
	})

	t.Run("liveness and version are static", func(t *testing.T) {
		st := store.New("unused.csv", nil)
		hs := NewHealthService(st, "1.2.3", nil)

		assert.Equal(t, true, hs.LivenessCheck(context.Background())["alive"])
		assert.Equal(t, "1.2.3", hs.Version()["version"])
	})
}

// dsStore digs the store back out of a loaded data service for health tests.
func dsStore(t *testing.T, ds *DataService) *store.Store {
	t.Helper()
	require.NotNil(t, ds.store)
	return ds.store
}
