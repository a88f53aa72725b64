// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/twhispers/twhispers/internal/config"
	"github.com/twhispers/twhispers/internal/db"
)

// Open returns a private in-memory SQLite database with the schema in place.
// It is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open(config.DB{Driver: "sqlite", Name: ":memory:"}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(conn))

	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

// InsertConfession writes a row with a fixed timestamp, bypassing the
// database clock. The timestamp must be in "YYYY-MM-DD HH:MM:SS" form.
func InsertConfession(t testing.TB, conn *gorm.DB, content, createdAt string) uint {
	t.Helper()

	require.NoError(t, conn.Exec(
		"INSERT INTO confessions (content, created_at, upvotes, downvotes) VALUES (?, ?, 0, 0)",
		content, createdAt,
	).Error)

	var id uint
	require.NoError(t, conn.Raw("SELECT MAX(id) FROM confessions").Scan(&id).Error)
	return id
}
