package storage

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestStore(t *testing.T) (*Service, func()) {
	service, err := NewMemoryService(context.Background())
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return service, service.Close
}

func TestSaveAndLoad(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Save(ctx, KeyRoster, []byte(`[{"username":"alice"}]`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	value, err := store.Load(ctx, KeyRoster)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(value) != `[{"username":"alice"}]` {
		t.Errorf("Unexpected document: %s", value)
	}
}

func TestLoadAbsentKey(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.Load(context.Background(), KeySession)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestLastWriteWins(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Save(ctx, KeyTheme, []byte("light")); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := store.Save(ctx, KeyTheme, []byte("dark")); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	value, err := store.Load(ctx, KeyTheme)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(value) != "dark" {
		t.Errorf("Expected dark, got %s", value)
	}
}

func TestSaveAllWritesEveryDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	err := store.SaveAll(ctx, map[string][]byte{
		KeyRoster:  []byte(`[]`),
		KeySession: []byte(`{"username":"alice"}`),
	})
	if err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	roster, err := store.Load(ctx, KeyRoster)
	if err != nil {
		t.Fatalf("Load roster failed: %v", err)
	}
	if string(roster) != `[]` {
		t.Errorf("Unexpected roster: %s", roster)
	}

	session, err := store.Load(ctx, KeySession)
	if err != nil {
		t.Fatalf("Load session failed: %v", err)
	}
	if string(session) != `{"username":"alice"}` {
		t.Errorf("Unexpected session: %s", session)
	}
}

func TestDelete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Save(ctx, KeySession, []byte(`{}`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx, KeySession); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Load(ctx, KeySession); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got: %v", err)
	}

	// Deleting an absent key is not an error.
	if err := store.Delete(ctx, KeySession); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}
