package database

import (
	"context"
	"errors"
	"testing"

	"postboard/internal/config"
	"postboard/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteAppliesSchema(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: ":memory:", Env: "test"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&models.Post{}))
	require.NoError(t, Ping(context.Background(), db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := openDialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"sqlite always auto", config.Config{DBDriver: "sqlite", DBSchemaMode: "sql"}, false, true, false},
		{"hybrid in development", config.Config{DBDriver: "postgres", Env: "development"}, true, true, false},
		{"hybrid in production", config.Config{DBDriver: "postgres", Env: "production"}, true, false, false},
		{"sql only", config.Config{DBDriver: "postgres", DBSchemaMode: "sql"}, true, false, false},
		{"auto refused in production", config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "prod"}, false, false, true},
		{"unknown mode", config.Config{DBDriver: "postgres", DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestEmbeddedMigrationsAreOrderedAndPaired(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	for i, m := range ms {
		assert.NotEmpty(t, m.UpScript, m.String())
		assert.NotEmpty(t, m.DownScript, m.String())
		if i > 0 {
			assert.Greater(t, m.Version, ms[i-1].Version)
		}
	}
	assert.Equal(t, "000001_create_posts", ms[0].String())
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	assert.ErrorContains(t, validateAppliedVersions([]int{1, 7}, registered), "000007")
}

func TestRunMigrationsRequiresPostgres(t *testing.T) {
	db, err := ConnectWithOptions(&config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}, ConnectOptions{})
	require.NoError(t, err)
	assert.ErrorContains(t, RunMigrations(context.Background(), db), "postgres")
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsMissingTableError(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsMissingTableError(errors.New("no such table: migration_logs")))
	assert.False(t, IsMissingTableError(nil))
	assert.True(t, IsConstraintViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsConstraintViolation(errors.New("timeout")))
}
