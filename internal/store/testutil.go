package store

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/verustcode/valreport/internal/database"
	"github.com/verustcode/valreport/internal/model"
	"github.com/verustcode/valreport/pkg/idgen"
)

// SetupTestDB creates a temp-file SQLite database for testing.
// It returns a Store instance and a cleanup function.
func SetupTestDB(t *testing.T) (Store, func()) {
	t.Helper()
	database.ResetForTesting()

	tmpFile, err := os.CreateTemp("", "valreport_test_*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	if err := database.InitWithPath(tmpPath); err != nil {
		os.Remove(tmpPath)
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	store := NewStore(database.Get())

	cleanup := func() {
		database.Close()
		database.ResetForTesting()
		os.Remove(tmpPath)
		os.Remove(tmpPath + "-wal")
		os.Remove(tmpPath + "-shm")
	}

	return store, cleanup
}

// CreateTestGeneration creates a pending Generation with default values.
// Fields can be overridden by passing functions that modify it.
func CreateTestGeneration(t *testing.T, store Store, overrides ...func(*model.Generation)) *model.Generation {
	t.Helper()

	gen := &model.Generation{
		ID:         idgen.NewGenerationID(),
		RecordID:   fmt.Sprintf("VAL-%d", time.Now().UnixNano()%100000),
		ClientName: "Test Client",
		BankName:   "Test Bank",
		Format:     "pdf",
		Source:     model.GenerationSourceAPI,
		Status:     model.GenerationStatusPending,
	}

	for _, override := range overrides {
		override(gen)
	}

	if err := store.Generation().Create(gen); err != nil {
		t.Fatalf("Failed to create test generation: %v", err)
	}
	return gen
}
