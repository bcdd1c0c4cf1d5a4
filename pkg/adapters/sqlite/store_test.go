package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/naas/pkg/adapters/sqlite"
	"github.com/aretw0/naas/pkg/domain"
	"github.com/aretw0/naas/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) (*sqlite.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "naas.db")
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	db, _ := openDB(t)
	ports.RunStateStoreContract(t, db.Sessions())
}

func TestSQLitePreferences_Contract(t *testing.T) {
	db, _ := openDB(t)
	ports.RunPreferenceStoreContract(t, db.Preferences())
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	db, path := openDB(t)
	ctx := context.Background()

	snap := domain.NewSnapshot("keep", domain.ToneFormal)
	snap.Input = "Board seat request"
	require.NoError(t, db.Sessions().Save(ctx, "keep", snap))
	require.NoError(t, db.Preferences().Set(ctx, domain.DefaultProfile, domain.PreferenceTheme, "dark"))
	require.NoError(t, db.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Sessions().Load(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "Board seat request", loaded.Input)

	theme, err := reopened.Preferences().Get(ctx, domain.DefaultProfile, domain.PreferenceTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}
