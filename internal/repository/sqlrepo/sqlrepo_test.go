package sqlrepo

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"rowstore/internal/entity"
	"rowstore/internal/repository"
)

var _ repository.Repository[int64, entity.Person] = (*Repo[int64, entity.Person])(nil)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates a people repository on an in-memory SQLite database
func newTestRepo(t *testing.T) *Repo[int64, entity.Person] {
	t.Helper()

	db, err := Open(SQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// The pool must stay on one connection or each conn gets its own
	// private in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})

	repo, err := New(db, SQLite, entity.PersonMapping())
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	if err := repo.CreateSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// assertNotFound fails the test unless err wraps ErrNotFound
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func samplePeople() []entity.Person {
	return []entity.Person{
		entity.NewPerson("a@x", "K", "N"),
		entity.NewPerson("b@x", "J", "N"),
		entity.NewPerson("c@x", "M", "N"),
	}
}

// ============================================================================
// Schema Tests
// ============================================================================

func TestCreateSchemaIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Already created by newTestRepo; creating again must not fail
	assertNoError(t, repo.CreateSchema(ctx))
	assertNoError(t, repo.CreateSchema(ctx))
}

func TestDropSchema(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.DropSchema(ctx))

	// Table is gone, queries now fail
	if _, err := repo.FindAll(ctx); err == nil {
		t.Fatal("expected error querying dropped table")
	}

	// Dropping again is a no-op
	assertNoError(t, repo.DropSchema(ctx))
}

// ============================================================================
// Save Tests
// ============================================================================

func TestSaveRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	in := entity.NewPerson("kent@example.com", "Kent", "Nilsson")
	id, err := repo.Save(ctx, in)
	assertNoError(t, err)
	if id == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.FindByID(ctx, id)
	assertNoError(t, err)
	if got == nil {
		t.Fatal("expected row, got nil")
	}
	assertEqual(t, id, *got.ID)
	assertEqual(t, in.Email, got.Email)
	assertEqual(t, in.FirstName, got.FirstName)
	assertEqual(t, in.LastName, got.LastName)
}

func TestSaveUpdateInPlace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, entity.NewPerson("old@example.com", "Old", "Name"))
	assertNoError(t, err)

	updated := entity.Person{ID: &id, Email: "new@example.com", FirstName: "New", LastName: "Name"}
	gotID, err := repo.Save(ctx, updated)
	assertNoError(t, err)
	assertEqual(t, id, gotID)

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(all))

	row, err := repo.FindExistingByID(ctx, id)
	assertNoError(t, err)
	assertEqual(t, "new@example.com", row.Email)
	assertEqual(t, "New", row.FirstName)
}

func TestSaveUpdateMissingRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	missing := int64(42)
	_, err := repo.Save(ctx, entity.Person{ID: &missing, Email: "x@x", FirstName: "X", LastName: "Y"})
	assertNotFound(t, err)
}

func TestSaveAllOrderAndCardinality(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)
	assertEqual(t, []int64{1, 2, 3}, ids)

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 3, len(all))
}

func TestSaveAllEmpty(t *testing.T) {
	repo := newTestRepo(t)

	ids, err := repo.SaveAll(context.Background(), nil)
	assertNoError(t, err)
	assertEqual(t, 0, len(ids))
}

func TestSaveAllRollsBackOnFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	missing := int64(99)
	batch := []entity.Person{
		entity.NewPerson("a@x", "K", "N"),
		{ID: &missing, Email: "b@x", FirstName: "J", LastName: "N"},
	}
	_, err := repo.SaveAll(ctx, batch)
	assertNotFound(t, err)

	// The first insert must not survive the failed batch
	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(all))
}

// ============================================================================
// Find Tests
// ============================================================================

func TestFindByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.FindByID(context.Background(), 12345)
	assertNoError(t, err)
	if got != nil {
		t.Fatalf("expected nil for absent id, got %+v", got)
	}
}

func TestFindExistingByIDAbsent(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindExistingByID(context.Background(), 12345)
	assertNotFound(t, err)
}

func TestFindAllOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, len(ids), len(all))
	for i, row := range all {
		assertEqual(t, ids[i], *row.ID)
	}
}

func TestFindByIDsPreservesInputOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)

	got, err := repo.FindByIDs(ctx, []int64{ids[2], ids[0]})
	assertNoError(t, err)
	assertEqual(t, 2, len(got))
	assertEqual(t, ids[2], *got[0].ID)
	assertEqual(t, ids[0], *got[1].ID)
}

func TestFindByIDsOmitsMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)

	got, err := repo.FindByIDs(ctx, []int64{999, ids[1], 888})
	assertNoError(t, err)
	assertEqual(t, 1, len(got))
	assertEqual(t, ids[1], *got[0].ID)
}

func TestFindByIDsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.FindByIDs(context.Background(), nil)
	assertNoError(t, err)
	assertEqual(t, 0, len(got))
}

// ============================================================================
// Copy Tests
// ============================================================================

func TestCopyAndSave(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, entity.NewPerson("kent@example.com", "Kent", "Nilsson"))
	assertNoError(t, err)

	copyID, err := repo.CopyAndSave(ctx, id)
	assertNoError(t, err)
	if copyID == id {
		t.Fatalf("copy id %d must differ from source id %d", copyID, id)
	}

	src, err := repo.FindExistingByID(ctx, id)
	assertNoError(t, err)
	dup, err := repo.FindExistingByID(ctx, copyID)
	assertNoError(t, err)

	assertEqual(t, src.Email, dup.Email)
	assertEqual(t, src.FirstName, dup.FirstName)
	assertEqual(t, src.LastName, dup.LastName)
}

func TestCopyAndSaveMissingSource(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CopyAndSave(context.Background(), 777)
	assertNotFound(t, err)
}

// ============================================================================
// Delete Tests
// ============================================================================

func TestDeleteByIDRemovesExactlyOne(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)

	assertNoError(t, repo.DeleteByID(ctx, ids[1]))

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(all))
	assertEqual(t, ids[0], *all[0].ID)
	assertEqual(t, ids[2], *all[1].ID)
}

func TestDeleteByIDAbsentIsNoop(t *testing.T) {
	repo := newTestRepo(t)

	assertNoError(t, repo.DeleteByID(context.Background(), 31337))
}

func TestDeleteAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveAll(ctx, samplePeople())
	assertNoError(t, err)

	assertNoError(t, repo.DeleteAll(ctx))

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 0, len(all))
}

func TestKeysNotReusedAfterDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Save(ctx, entity.NewPerson("a@x", "K", "N"))
	assertNoError(t, err)
	assertNoError(t, repo.DeleteByID(ctx, id))

	next, err := repo.Save(ctx, entity.NewPerson("b@x", "J", "N"))
	assertNoError(t, err)
	if next == id {
		t.Fatalf("key %d was reused after deletion", id)
	}
}

// ============================================================================
// Scenario Tests
// ============================================================================

func TestInsertThreeDeleteMiddle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	people := samplePeople()
	ids, err := repo.SaveAll(ctx, people)
	assertNoError(t, err)
	assertEqual(t, []int64{1, 2, 3}, ids)

	assertNoError(t, repo.DeleteByID(ctx, 2))

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(all))

	assertEqual(t, int64(1), *all[0].ID)
	assertEqual(t, people[0].Email, all[0].Email)
	assertEqual(t, people[0].FirstName, all[0].FirstName)

	assertEqual(t, int64(3), *all[1].ID)
	assertEqual(t, people[2].Email, all[1].Email)
	assertEqual(t, people[2].FirstName, all[1].FirstName)
}

// ============================================================================
// String Key Tests
// ============================================================================

// tag is a string-keyed row used to exercise client-generated keys
type tag struct {
	ID   *string
	Name string
}

func tagMapping() repository.Mapping[string, tag] {
	return repository.Mapping[string, tag]{
		Table:      "tags",
		IDColumn:   "id",
		Columns:    []string{"name"},
		ColumnDefs: []string{"name TEXT NOT NULL"},
		ID: func(v tag) (string, bool) {
			if v.ID == nil {
				return "", false
			}
			return *v.ID, true
		},
		SetID: func(v *tag, id string) { v.ID = &id },
		Args:  func(v tag) []any { return []any{v.Name} },
		ScanDest: func(v *tag) []any {
			return []any{&v.Name}
		},
		NewKey: uuid.NewString,
	}
}

func TestStringKeyedTable(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	assertNoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := New(db, SQLite, tagMapping())
	assertNoError(t, err)

	ctx := context.Background()
	assertNoError(t, repo.CreateSchema(ctx))

	id, err := repo.Save(ctx, tag{Name: "alpha"})
	assertNoError(t, err)
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		t.Fatalf("expected UUID key, got %q: %v", id, parseErr)
	}

	got, err := repo.FindExistingByID(ctx, id)
	assertNoError(t, err)
	assertEqual(t, "alpha", got.Name)

	copyID, err := repo.CopyAndSave(ctx, id)
	assertNoError(t, err)
	if copyID == id {
		t.Fatal("copy must get a fresh key")
	}

	all, err := repo.FindAll(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(all))
}

func TestMappingValidation(t *testing.T) {
	db, err := Open(SQLite, ":memory:")
	assertNoError(t, err)
	t.Cleanup(func() { db.Close() })

	t.Run("string keys require NewKey", func(t *testing.T) {
		m := tagMapping()
		m.NewKey = nil
		if _, err := New(db, SQLite, m); err == nil {
			t.Fatal("expected error for string mapping without NewKey")
		}
	})

	t.Run("int64 keys reject NewKey", func(t *testing.T) {
		m := entity.PersonMapping()
		m.NewKey = func() int64 { return 7 }
		if _, err := New(db, SQLite, m); err == nil {
			t.Fatal("expected error for int64 mapping with NewKey")
		}
	})

	t.Run("empty table rejected", func(t *testing.T) {
		m := entity.PersonMapping()
		m.Table = ""
		if _, err := New(db, SQLite, m); err == nil {
			t.Fatal("expected error for empty table name")
		}
	})
}
