package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendsRepositories(t *testing.T) {
	m := NewPostgresRepositoryManager()

	assert.NotNil(t, m.Users(nil))
	assert.NotNil(t, m.RefreshTokens(nil))
	assert.NotNil(t, m.Items(nil))
	assert.NotNil(t, m.SharedLinks(nil))
}

func TestRunMigrations_UsesGoose(t *testing.T) {
	old := gooseUpContext
	defer func() { gooseUpContext = old }()

	var calledDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		calledDir = dir
		return nil
	}

	m := NewPostgresRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), nil))
	assert.Equal(t, ".", calledDir)
}

func TestRunMigrations_GooseError(t *testing.T) {
	old := gooseUpContext
	defer func() { gooseUpContext = old }()

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migrate failed")
	}

	m := NewPostgresRepositoryManager()
	err := m.RunMigrations(context.Background(), nil)
	assert.ErrorContains(t, err, "migrate failed")
}
