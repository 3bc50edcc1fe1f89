package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/mediflow-portal/internal/models"
)

type store interface {
	Load() ([]byte, error)
	Save([]byte) error
	Clear() error
	AppendAudit(context.Context, models.AuditEntry) error
	AuditTrail(context.Context, int) ([]models.AuditEntry, error)
}

func backends(t *testing.T) map[string]store {
	ldb, err := OpenLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })
	return map[string]store{"leveldb": ldb, "memory": NewMemory()}
}

func TestSessionKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load()
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save([]byte("blob")))
			got, err := s.Load()
			require.NoError(t, err)
			assert.Equal(t, []byte("blob"), got)

			require.NoError(t, s.Clear())
			_, err = s.Load()
			assert.ErrorIs(t, err, ErrNotFound)

			// clearing twice is fine
			assert.NoError(t, s.Clear())
		})
	}
}

func TestAuditTrailNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i, id := range []string{"a", "b", "c"} {
				require.NoError(t, s.AppendAudit(ctx, models.AuditEntry{
					ID:        id,
					UserID:    "d1",
					Role:      models.RoleDoctor,
					Path:      "/emergency-access",
					Timestamp: base.Add(time.Duration(i) * time.Minute),
				}))
			}

			all, err := s.AuditTrail(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "c", all[0].ID)
			assert.Equal(t, "a", all[2].ID)

			two, err := s.AuditTrail(ctx, 2)
			require.NoError(t, err)
			require.Len(t, two, 2)
			assert.Equal(t, "b", two[1].ID)
		})
	}
}

func TestLevelDBSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ldb, err := OpenLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, ldb.Save([]byte("persisted")))
	require.NoError(t, ldb.Close())

	ldb, err = OpenLevelDB(dir)
	require.NoError(t, err)
	defer ldb.Close()
	got, err := ldb.Load()
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
