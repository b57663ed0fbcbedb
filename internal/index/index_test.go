package index_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/index"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/store"
	"github.com/ysamlan/vscode-backlog-md-sub001/internal/task"
)

func openTestIndex(t *testing.T) (*index.Index, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := index.Open(context.Background(), path, "TASK")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}

	t.Cleanup(func() { _ = ix.Close() })

	return ix, path
}

func entry(id, title, status, parent string, ordinal *float64) store.Entry {
	tk := task.Task{ID: id, Title: title, Status: status, Parent: parent, Ordinal: ordinal}

	return store.Entry{Task: tk, Scope: store.ScopeActive, Path: "tasks/" + id + ".md"}
}

func ordp(v float64) *float64 { return &v }

func Test_ByStatus_OrdersByOrdinalThenTitle_When_SomeOrdinalsMissing(t *testing.T) {
	t.Parallel()

	ix, _ := openTestIndex(t)
	ctx := context.Background()

	err := ix.Rebuild(ctx, []store.Entry{
		entry("TASK-1", "zeta", "To Do", "", nil),
		entry("TASK-2", "alpha", "To Do", "", nil),
		entry("TASK-3", "last ordinal", "To Do", "", ordp(2000)),
		entry("TASK-4", "first ordinal", "To Do", "", ordp(1000)),
		entry("TASK-5", "other column", "Done", "", ordp(500)),
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	rows, err := ix.ByStatus(ctx, store.ScopeActive, "To Do")
	if err != nil {
		t.Fatalf("by status: %v", err)
	}

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.ID)
	}

	want := []string{"TASK-4", "TASK-3", "TASK-2", "TASK-1"}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

func Test_ByStatus_ComparesIDsNumerically_When_OrdinalsAndTitlesTie(t *testing.T) {
	t.Parallel()

	ix, _ := openTestIndex(t)
	ctx := context.Background()

	err := ix.Rebuild(ctx, []store.Entry{
		entry("TASK-10", "same title", "To Do", "", ordp(1000)),
		entry("TASK-9", "same title", "To Do", "", ordp(1000)),
		entry("TASK-2", "same title", "To Do", "", nil),
		entry("TASK-11", "same title", "To Do", "", nil),
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	rows, err := ix.ByStatus(ctx, store.ScopeActive, "To Do")
	if err != nil {
		t.Fatalf("by status: %v", err)
	}

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.ID)
	}

	want := []string{"TASK-9", "TASK-10", "TASK-2", "TASK-11"}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

func Test_Upsert_ReplacesRow_When_IDAlreadyIndexed(t *testing.T) {
	t.Parallel()

	ix, _ := openTestIndex(t)
	ctx := context.Background()

	err := ix.Upsert(ctx, entry("TASK-1", "before", "To Do", "", nil))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err = ix.Upsert(ctx, entry("TASK-1", "after", "In Progress", "", ordp(1000)))
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	rows, err := ix.All(ctx, store.ScopeActive)
	if err != nil {
		t.Fatalf("all: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	if rows[0].Title != "after" || rows[0].Status != "In Progress" {
		t.Fatalf("row = %+v, want refreshed title and status", rows[0])
	}

	if !rows[0].Ordinal.Valid || rows[0].Ordinal.Float64 != 1000 {
		t.Fatalf("ordinal = %+v, want 1000", rows[0].Ordinal)
	}
}

func Test_Children_ReturnsDirectChildren_When_ParentQueried(t *testing.T) {
	t.Parallel()

	ix, _ := openTestIndex(t)
	ctx := context.Background()

	err := ix.Rebuild(ctx, []store.Entry{
		entry("TASK-1", "parent", "To Do", "", nil),
		entry("TASK-1.1", "child a", "To Do", "TASK-1", ordp(2000)),
		entry("TASK-1.2", "child b", "To Do", "TASK-1", ordp(1000)),
		entry("TASK-1.1.1", "grandchild", "To Do", "TASK-1.1", nil),
	})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	rows, err := ix.Children(ctx, "TASK-1")
	if err != nil {
		t.Fatalf("children: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d children, want 2", len(rows))
	}

	if rows[0].ID != "TASK-1.2" || rows[1].ID != "TASK-1.1" {
		t.Fatalf("children = [%s %s], want ordinal order", rows[0].ID, rows[1].ID)
	}
}

func Test_Remove_DropsRow_When_TaskDeleted(t *testing.T) {
	t.Parallel()

	ix, _ := openTestIndex(t)
	ctx := context.Background()

	err := ix.Upsert(ctx, entry("TASK-1", "doomed", "To Do", "", nil))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err = ix.Remove(ctx, "TASK-1")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}

	rows, err := ix.All(ctx, store.ScopeActive)
	if err != nil {
		t.Fatalf("all: %v", err)
	}

	if len(rows) != 0 {
		t.Fatalf("got %d rows, want empty index", len(rows))
	}
}

func Test_Open_WipesStaleSchema_When_UserVersionMismatched(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}

	_, err = db.Exec("CREATE TABLE tasks (id TEXT PRIMARY KEY); PRAGMA user_version = 999")
	if err != nil {
		t.Fatalf("seed stale schema: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("close raw: %v", err)
	}

	ix, err := index.Open(ctx, path, "TASK")
	if err != nil {
		t.Fatalf("open index over stale db: %v", err)
	}

	defer func() { _ = ix.Close() }()

	// The old single-column table must be gone or Upsert would fail.
	err = ix.Upsert(ctx, entry("TASK-1", "fresh", "To Do", "", nil))
	if err != nil {
		t.Fatalf("upsert after wipe: %v", err)
	}
}
