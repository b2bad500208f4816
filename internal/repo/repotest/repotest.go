// Package repotest opens throwaway in-memory stores for tests.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/study_planner/internal/repo"
)

func New(t testing.TB) *repo.GormRepo {
	t.Helper()

	db, err := repo.Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &repo.GormRepo{DB: db}
}
