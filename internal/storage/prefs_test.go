package storage

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, 42); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v", ok, err)
	}

	want := ChatPrefs{StyleTitle: "Anime", StyleName: "ANIME"}
	if err := store.Set(ctx, 42, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := store.Get(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}

	// A second Set replaces the first.
	want = ChatPrefs{StyleTitle: "No style", StyleName: "DEFAULT"}
	if err := store.Set(ctx, 42, want); err != nil {
		t.Fatalf("Set again: %v", err)
	}
	got, _, _ = store.Get(ctx, 42)
	if got != want {
		t.Fatalf("Get after overwrite = %+v, want %+v", got, want)
	}
}

func TestMemoryStoreIsolatesChats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, 1, ChatPrefs{StyleTitle: "Anime", StyleName: "ANIME"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 2); ok {
		t.Fatalf("chat 2 should have no prefs")
	}
}

type fakeExecutor struct {
	execQueries []string
	row         fakeRow
}

type fakeRow struct {
	title string
	name  string
	err   error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	*(dest[0].(*string)) = f.title
	*(dest[1].(*string)) = f.name
	return nil
}

func (f *fakeExecutor) Exec(_ context.Context, query string, _ ...any) (pgconn.CommandTag, error) {
	f.execQueries = append(f.execQueries, query)
	return pgconn.CommandTag{}, nil
}

func (f *fakeExecutor) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return f.row
}

func TestPostgresStoreGetMissingRow(t *testing.T) {
	exec := &fakeExecutor{row: fakeRow{err: pgx.ErrNoRows}}
	store := NewPostgresStore(exec)

	_, ok, err := store.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("missing row should report ok=false")
	}
}

func TestPostgresStoreGetFound(t *testing.T) {
	exec := &fakeExecutor{row: fakeRow{title: "Anime", name: "ANIME"}}
	store := NewPostgresStore(exec)

	prefs, ok, err := store.Get(context.Background(), 7)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if prefs.StyleTitle != "Anime" || prefs.StyleName != "ANIME" {
		t.Fatalf("prefs = %+v", prefs)
	}
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	exec := &fakeExecutor{}
	store := NewPostgresStore(exec)

	if err := store.Set(context.Background(), 7, ChatPrefs{StyleTitle: "Anime", StyleName: "ANIME"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(exec.execQueries) != 1 || exec.execQueries[0] != qUpsertPrefs {
		t.Fatalf("exec queries = %v", exec.execQueries)
	}
}
