package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/traffic_alert_bot/internal/models"
	"github.com/shenikar/traffic_alert_bot/pkg/postgres"
)

func TestFileStore_IncidentsRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	set := models.IncidentSet{
		{Lat: 55.751244, Lon: 37.618423}:      "ДТП на Тверской",
		{Lat: 55.7, Lon: 37.5}:                "crash",
		{Lat: -0.1, Lon: 0.30000000000000004}: "precision",
	}

	require.NoError(t, store.SaveIncidents(ctx, set))
	loaded, err := store.LoadIncidents(ctx)

	require.NoError(t, err)
	assert.Equal(t, set, loaded)
}

func TestFileStore_IncidentsReplacedOnSave(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SaveIncidents(ctx, models.IncidentSet{{Lat: 1, Lon: 1}: "a"}))
	require.NoError(t, store.SaveIncidents(ctx, models.IncidentSet{{Lat: 2, Lon: 2}: "b"}))

	loaded, err := store.LoadIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentSet{{Lat: 2, Lon: 2}: "b"}, loaded)
}

func TestFileStore_MissingFilesLoadEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)
	ctx := context.Background()

	subs, err := store.LoadSubscribers(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs.Approved)
	assert.NotNil(t, subs.Pending)
	assert.NotNil(t, subs.Known)

	incidents, err := store.LoadIncidents(ctx)
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestFileStore_SubscribersRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	subs := models.Subscribers{
		Approved: []int64{10, 20},
		Pending:  map[string]int64{"ivan": 30},
		Known:    map[string]int64{"ivan": 30, "petr": 10},
	}

	require.NoError(t, store.SaveSubscribers(ctx, subs))
	loaded, err := store.LoadSubscribers(ctx)

	require.NoError(t, err)
	assert.Equal(t, subs, loaded)

	// Формат совместим с прежними файлами: users.json - массив chat id
	data, err := os.ReadFile(filepath.Join(dir, ApprovedFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[10, 20]`, string(data))
	_, err = os.Stat(filepath.Join(dir, ApprovedFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_SubscribersPartialSaveRestored(t *testing.T) {
	committed := models.Subscribers{
		Approved: []int64{10},
		Pending:  map[string]int64{"ivan": 42},
		Known:    map[string]int64{"ivan": 42, "petr": 10},
	}
	// Одобрение ivan: 42 переходит из pending в approved
	approve := models.Subscribers{
		Approved: []int64{10, 42},
		Pending:  map[string]int64{},
		Known:    map[string]int64{"ivan": 42, "petr": 10},
	}

	testCases := []struct {
		name    string
		blocked string
	}{
		{name: "First write fails", blocked: PendingFile},
		{name: "Second write fails", blocked: KnownFile},
		{name: "Last write fails", blocked: ApprovedFile},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewFileStore(dir)
			require.NoError(t, err)
			ctx := context.Background()
			require.NoError(t, store.SaveSubscribers(ctx, committed))

			// Каталог на месте временного файла ломает запись этой коллекции
			tmp := filepath.Join(dir, tc.blocked+".tmp")
			require.NoError(t, os.Mkdir(tmp, 0o755))

			err = store.SaveSubscribers(ctx, approve)
			require.Error(t, err)

			require.NoError(t, os.Remove(tmp))
			loaded, err := store.LoadSubscribers(ctx)
			require.NoError(t, err)
			assert.Equal(t, committed, loaded)
		})
	}
}

func TestFileStore_PartialFirstSaveLeavesNoFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	tmp := filepath.Join(dir, ApprovedFile+".tmp")
	require.NoError(t, os.Mkdir(tmp, 0o755))

	err = store.SaveSubscribers(ctx, models.Subscribers{
		Approved: []int64{1},
		Pending:  map[string]int64{"anna": 2},
		Known:    map[string]int64{"anna": 2},
	})
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(dir, PendingFile))
	assert.NoFileExists(t, filepath.Join(dir, KnownFile))
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PendingFile), []byte("{broken"), 0o600))
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.LoadSubscribers(context.Background())

	assert.ErrorContains(t, err, PendingFile)
}

func TestEnvAdminRepository_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TG_API_KEY=token\nZOOM=12\n"), 0o600))
	repo := NewEnvAdminRepository(path)

	require.NoError(t, repo.SaveAdmin(context.Background(), 123456))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "token", env["TG_API_KEY"])
	assert.Equal(t, "12", env["ZOOM"])
	assert.Equal(t, "123456", env[AdminEnvKey])
}

func TestEnvAdminRepository_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	repo := NewEnvAdminRepository(path)

	require.NoError(t, repo.SaveAdmin(context.Background(), 42))

	env, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "42", env[AdminEnvKey])
}

// TestPostgresStore_RoundTrip выполняется только при заданном TEST_DATABASE_URL
func TestPostgresStore_RoundTrip(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(databaseURL, "../../migrations"))
	pool, err := postgres.Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer pool.Close()
	store := NewPostgresStore(pool)

	subs := models.Subscribers{
		Approved: []int64{3, 1, 2},
		Pending:  map[string]int64{"anna": 4},
		Known:    map[string]int64{"anna": 4, "boris": 1},
	}
	require.NoError(t, store.SaveSubscribers(ctx, subs))
	loadedSubs, err := store.LoadSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, subs, loadedSubs)

	set := models.IncidentSet{{Lat: 55.1, Lon: 37.2}: "a", {Lat: 55.3, Lon: 37.4}: "b"}
	require.NoError(t, store.SaveIncidents(ctx, set))
	loadedSet, err := store.LoadIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, set, loadedSet)
}
