package main

import (
	"net"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/twhispers/twhispers/internal/models"
)

func TestRunReturnsListenErrorAfterCleanup(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { busy.Close() })
	port := busy.Addr().(*net.TCPAddr).Port

	path := filepath.Join(t.TempDir(), "twhispers.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_USER", "whisper")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", path)
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("APP_ENV", "test")

	err = run()
	require.Error(t, err)

	// The schema was created before listening failed, and the file is
	// usable from a fresh handle once run has released its own.
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	assert.True(t, conn.Migrator().HasTable(&models.Confession{}))
}

func TestRunRejectsIncompleteConfig(t *testing.T) {
	t.Setenv("DB_USER", "whisper")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "confessions")

	err := run()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}
