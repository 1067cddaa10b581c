// Package testing provides testing utilities and helpers for the refportfolio project.
package testing

import (
	"os"
	"testing"

	"github.com/aristath/refportfolio/internal/database"
)

// NewTestDB creates a temporary-file SQLite database with the schema applied.
// Returns the database instance and a cleanup function that closes the
// connection. The cleanup function is also registered with t.Cleanup and is
// safe to call more than once.
func NewTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	// Temporary files keep every test isolated
	tmpFile, err := os.CreateTemp("", "test_refportfolio_*.db")
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{Path: tmpPath, Name: "test"})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
	t.Cleanup(cleanup)

	return db, cleanup
}
