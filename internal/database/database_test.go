package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rrhh/internal/database"
	"rrhh/internal/database/dbtest"
	"rrhh/internal/model"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:rrhh.db?_foreign_keys=on&_busy_timeout=5000", database.SQLiteDSN("rrhh.db", 5*time.Second))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on&_busy_timeout=2000",
		database.SQLiteDSN("file::memory:?cache=shared", 2*time.Second))
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := dbtest.New(t)

	for _, table := range []string{
		"empleados", "departamentos", "puestos", "contratos", "asistencias", "nominas",
		"vacaciones", "evaluaciones", "capacitaciones", "notificaciones", "usuarios",
		"roles", "permisos", "rol_permisos", "puesto_roles", "historial_roles", "auditoria",
		"schema_migrations",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("nominas", "idx_nominas_periodo"))

	// running again is a no-op
	require.NoError(t, database.Migrate(context.Background(), db))

	var count int64
	require.NoError(t, db.Model(&model.SchemaMigration{}).Count(&count).Error)
	assert.Equal(t, int64(len(database.Migrations)), count)
}

func TestMigrateDetectsEditedMigration(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	history := []database.Migration{
		{Version: 1, Name: "notes", Statements: []string{`CREATE TABLE notas (id INTEGER PRIMARY KEY, texto TEXT)`}},
	}
	require.NoError(t, database.Apply(ctx, db, history))

	edited := []database.Migration{
		{Version: 1, Name: "notes", Statements: []string{`CREATE TABLE notas (id INTEGER PRIMARY KEY, texto TEXT, extra TEXT)`}},
	}
	err := database.Apply(ctx, db, edited)
	assert.ErrorIs(t, err, database.ErrChecksumMismatch)
}

func TestMigrateRollsBackFailedStep(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	history := []database.Migration{
		{Version: 1, Name: "broken", Statements: []string{
			`CREATE TABLE parcial (id INTEGER PRIMARY KEY)`,
			`THIS IS NOT SQL`,
		}},
	}
	require.Error(t, database.Apply(ctx, db, history))
	assert.False(t, db.Migrator().HasTable("parcial"))

	var count int64
	require.NoError(t, db.Model(&model.SchemaMigration{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMigrateRejectsDuplicateVersions(t *testing.T) {
	db := dbtest.Open(t)
	err := database.Apply(context.Background(), db, []database.Migration{
		{Version: 1, Name: "a"}, {Version: 1, Name: "b"},
	})
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	st, err := database.Status(ctx, db)
	require.NoError(t, err)
	require.Len(t, st, len(database.Migrations))
	for _, s := range st {
		assert.False(t, s.Applied)
	}

	require.NoError(t, database.Migrate(ctx, db))
	st, err = database.Status(ctx, db)
	require.NoError(t, err)
	for _, s := range st {
		assert.True(t, s.Applied)
		assert.False(t, s.Mismatch)
	}
}

func TestWithLockRetry(t *testing.T) {
	ctx := context.Background()
	busy := sqlite3.Error{Code: sqlite3.ErrBusy}

	calls := 0
	err := database.WithLockRetry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return busy
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = database.WithLockRetry(ctx, 2, time.Millisecond, func() error {
		calls++
		return busy
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	boom := errors.New("syntax error")
	err = database.WithLockRetry(ctx, 5, time.Millisecond, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
