package migrations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// TestRunMigrations_FreshDB verifies all migrations apply to an empty :memory: database.
func TestRunMigrations_FreshDB(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err, "RunMigrations should succeed on fresh database")

	for _, table := range []string{"positioning_drafts", "cohorts"} {
		var name string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		require.Equal(t, table, name)
	}
}

// TestRunMigrations_Idempotent verifies calling RunMigrations twice doesn't error.
func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err, "first migration run should succeed")

	// Second run should not error (ErrNoChange handled internally)
	err = RunMigrations(db)
	require.NoError(t, err, "second migration run should not error")

	var tableName string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='positioning_drafts'`).Scan(&tableName)
	require.NoError(t, err)
	require.Equal(t, "positioning_drafts", tableName)
}

// TestMigrations_Schema verifies tables exist with correct columns and indexes.
func TestMigrations_Schema(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err)

	tableColumns := func(table string) map[string]bool {
		rows, err := db.Query(`PRAGMA table_info(` + table + `)`)
		require.NoError(t, err)
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, typ string
			var notnull, pk int
			var dflt interface{}
			require.NoError(t, rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk))
			columns[name] = true
		}
		require.NoError(t, rows.Err())
		return columns
	}

	draftCols := tableColumns("positioning_drafts")
	for _, col := range []string{"guid", "title", "fields_json", "map_json", "fallback", "created_at", "updated_at"} {
		require.True(t, draftCols[col], "positioning_drafts column %s should exist", col)
	}

	cohortCols := tableColumns("cohorts")
	for _, col := range []string{"id", "name", "segment", "size_band", "notes", "created_at", "updated_at"} {
		require.True(t, cohortCols[col], "cohorts column %s should exist", col)
	}

	indexRows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='index' AND name LIKE 'idx_%'`)
	require.NoError(t, err)
	defer indexRows.Close()

	indexes := make(map[string]bool)
	for indexRows.Next() {
		var name string
		require.NoError(t, indexRows.Scan(&name))
		indexes[name] = true
	}
	require.NoError(t, indexRows.Err())

	for _, idx := range []string{"idx_positioning_drafts_updated_at", "idx_cohorts_name"} {
		require.True(t, indexes[idx], "index %s should exist", idx)
	}
}

// TestMigrations_Down verifies down migrations roll back the schema.
func TestMigrations_Down(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	require.NoError(t, err)

	err = m.Up()
	require.NoError(t, err, "migrations should apply")

	var tableExists bool
	err = db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='positioning_drafts'`).Scan(&tableExists)
	require.NoError(t, err)
	require.True(t, tableExists, "positioning_drafts table should exist before down migration")

	err = m.Down()
	require.NoError(t, err, "down migrations should succeed")

	err = db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='positioning_drafts'`).Scan(&tableExists)
	require.NoError(t, err)
	require.False(t, tableExists, "positioning_drafts table should be dropped after down migration")

	err = db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='cohorts'`).Scan(&tableExists)
	require.NoError(t, err)
	require.False(t, tableExists, "cohorts table should be dropped after down migration")
}

// TestMigrationsFS_Embedded verifies SQL files load from embedded FS at build time.
func TestMigrationsFS_Embedded(t *testing.T) {
	fs := MigrationsFS()
	require.NotNil(t, fs, "MigrationsFS should return non-nil filesystem")

	entries, err := embeddedMigrationsFS.ReadDir(".")
	require.NoError(t, err, "should read embedded directory")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	require.True(t, fileNames["000001_create_positioning_drafts.up.sql"], "up migration should be embedded")
	require.True(t, fileNames["000001_create_positioning_drafts.down.sql"], "down migration should be embedded")
	require.True(t, fileNames["000002_create_cohorts.up.sql"], "cohorts up migration should be embedded")

	upContent, err := embeddedMigrationsFS.ReadFile("000001_create_positioning_drafts.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(upContent), "CREATE TABLE IF NOT EXISTS positioning_drafts")

	downContent, err := embeddedMigrationsFS.ReadFile("000001_create_positioning_drafts.down.sql")
	require.NoError(t, err)
	require.Contains(t, string(downContent), "DROP TABLE")
}

// TestNCrucesDriverWithGolangMigrate validates that our custom NCrucesSqlite driver
// works with golang-migrate's migration framework using ncruces/go-sqlite3.
func TestNCrucesDriverWithGolangMigrate(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer db.Close()

	err = db.Ping()
	require.NoError(t, err, "database should respond to ping")

	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err, "WithInstance should accept ncruces *sql.DB")
	require.NotNil(t, driver, "driver should not be nil")
}

// TestMigrateIdempotent verifies that running migrations twice handles ErrNoChange.
func TestMigrateIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	driver1, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source1, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m1, err := migrate.NewWithInstance("iofs", source1, "sqlite3", driver1)
	require.NoError(t, err)

	err = m1.Up()
	require.NoError(t, err, "first migration run should succeed")

	// Recreate migrator (simulates app restart)
	driver2, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source2, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m2, err := migrate.NewWithInstance("iofs", source2, "sqlite3", driver2)
	require.NoError(t, err)

	err = m2.Up()
	if err != nil {
		require.True(t, errors.Is(err, migrate.ErrNoChange),
			"second migration run should return ErrNoChange, got: %v", err)
	}
}

// TestInsertAndQueryWithMigration verifies the migrated schema works for CRUD.
func TestInsertAndQueryWithMigration(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO positioning_drafts (guid, title, fields_json, map_json, fallback)
		VALUES (?, ?, ?, ?, ?)
	`, "draft-guid-123", "Founders launch", `{"cohort":"founders"}`, nil, 0)
	require.NoError(t, err, "insert should succeed")

	var guid, title, fieldsJSON string
	var mapJSON *string
	var fallback int
	err = db.QueryRow(`
		SELECT guid, title, fields_json, map_json, fallback
		FROM positioning_drafts WHERE guid = ?
	`, "draft-guid-123").Scan(&guid, &title, &fieldsJSON, &mapJSON, &fallback)
	require.NoError(t, err)
	require.Equal(t, "draft-guid-123", guid)
	require.Equal(t, "Founders launch", title)
	require.Nil(t, mapJSON)
	require.Equal(t, 0, fallback)

	_, err = db.Exec(`
		INSERT INTO cohorts (id, name, segment, size_band, notes)
		VALUES (?, ?, ?, ?, ?)
	`, "cohort-1", "Indie founders", "bootstrapped SaaS", "niche", "")
	require.NoError(t, err, "cohort insert should succeed")
}
