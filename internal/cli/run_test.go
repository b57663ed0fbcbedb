package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ysamlan/vscode-backlog-md-sub001/internal/cli"
)

// runCLI executes one command against dir, isolated from any real user
// config via XDG_CONFIG_HOME.
func runCLI(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()

	var out, errOut bytes.Buffer

	argv := append([]string{"backlog", "--dir", dir}, args...)
	code := cli.Run(strings.NewReader(""), &out, &errOut, argv)

	return out.String(), errOut.String(), code
}

func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))

	return t.TempDir()
}

func mustCreate(t *testing.T, dir string, args ...string) string {
	t.Helper()

	out, errOut, code := runCLI(t, dir, append([]string{"create"}, args...)...)
	if code != 0 {
		t.Fatalf("create failed (%d): %s", code, errOut)
	}

	return strings.TrimSpace(out)
}

func Test_Create_PrintsSequentialIDs_When_CalledRepeatedly(t *testing.T) {
	dir := setupProject(t)

	first := mustCreate(t, dir, "first task")
	second := mustCreate(t, dir, "second task")

	if first != "TASK-1" || second != "TASK-2" {
		t.Fatalf("ids = %q, %q; want TASK-1, TASK-2", first, second)
	}

	if _, err := os.Stat(filepath.Join(dir, "backlog", "tasks", "TASK-2.md")); err != nil {
		t.Fatalf("task file missing: %v", err)
	}
}

func Test_Create_WritesDraft_When_DraftFlagSet(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "--draft", "an idea")

	if _, err := os.Stat(filepath.Join(dir, "backlog", "drafts", id+".md")); err != nil {
		t.Fatalf("draft file missing: %v", err)
	}
}

func Test_Create_Fails_When_StatusUnknown(t *testing.T) {
	dir := setupProject(t)

	_, errOut, code := runCLI(t, dir, "create", "-s", "Bogus", "a task")
	if code == 0 {
		t.Fatal("expected non-zero exit for unknown status")
	}

	if !strings.Contains(errOut, "invalid status") {
		t.Fatalf("stderr = %q, want invalid status message", errOut)
	}
}

func Test_Show_PrintsRelations_When_DependencyOpen(t *testing.T) {
	dir := setupProject(t)

	dep := mustCreate(t, dir, "the blocker")
	id := mustCreate(t, dir, "--dep", dep, "the blocked one")

	out, _, code := runCLI(t, dir, "show", id)
	if code != 0 {
		t.Fatalf("show exit = %d", code)
	}

	if !strings.Contains(out, "blocked by:") || !strings.Contains(out, dep) {
		t.Fatalf("show output missing blocked-by section:\n%s", out)
	}
}

func Test_Deps_WarnsAndExitsNonZero_When_TaskBlocked(t *testing.T) {
	dir := setupProject(t)

	dep := mustCreate(t, dir, "the blocker")
	id := mustCreate(t, dir, "--dep", dep, "the blocked one")

	out, errOut, code := runCLI(t, dir, "deps", id)
	if code != 1 {
		t.Fatalf("deps exit = %d, want 1 while blocked", code)
	}

	if !strings.Contains(out, "blocked-by "+dep) {
		t.Fatalf("deps output = %q", out)
	}

	if !strings.Contains(errOut, "warning:") {
		t.Fatalf("stderr = %q, want warning", errOut)
	}

	// Completing the dependency unblocks.
	_, errOut, code = runCLI(t, dir, "edit", dep, "-s", "Done")
	if code != 0 {
		t.Fatalf("edit failed (%d): %s", code, errOut)
	}

	_, _, code = runCLI(t, dir, "deps", id)
	if code != 0 {
		t.Fatalf("deps exit = %d after dependency done, want 0", code)
	}
}

func Test_CheckUncheck_FlipChecklistItem_When_NumberGiven(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "--ac", "parses input", "--ac", "writes output", "with criteria")

	_, errOut, code := runCLI(t, dir, "check", id, "2")
	if code != 0 {
		t.Fatalf("check failed (%d): %s", code, errOut)
	}

	out, _, _ := runCLI(t, dir, "show", id)
	if !strings.Contains(out, "[x] #2 writes output") {
		t.Fatalf("item 2 not checked:\n%s", out)
	}

	if !strings.Contains(out, "[ ] #1 parses input") {
		t.Fatalf("item 1 should stay unchecked:\n%s", out)
	}

	// check again is a no-op, uncheck flips back
	_, _, code = runCLI(t, dir, "check", id, "2")
	if code != 0 {
		t.Fatal("re-check should succeed as no-op")
	}

	_, _, code = runCLI(t, dir, "uncheck", id, "2")
	if code != 0 {
		t.Fatal("uncheck failed")
	}

	out, _, _ = runCLI(t, dir, "show", id)
	if !strings.Contains(out, "[ ] #2 writes output") {
		t.Fatalf("item 2 not unchecked:\n%s", out)
	}
}

func Test_Check_Fails_When_ItemMissing(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "no criteria")

	_, errOut, code := runCLI(t, dir, "check", id, "3")
	if code == 0 {
		t.Fatal("expected failure for missing checklist item")
	}

	if !strings.Contains(errOut, "checklist item not found") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func Test_Ls_OrdersByDropPosition_When_TaskMoved(t *testing.T) {
	dir := setupProject(t)

	a := mustCreate(t, dir, "alpha")
	b := mustCreate(t, dir, "bravo")
	c := mustCreate(t, dir, "charlie")

	// Establish explicit ordinals, then drop charlie at the top.
	_, errOut, code := runCLI(t, dir, "repair", "--force-sequential")
	if code != 0 {
		t.Fatalf("repair failed (%d): %s", code, errOut)
	}

	_, errOut, code = runCLI(t, dir, "move", c, "-n", "0")
	if code != 0 {
		t.Fatalf("move failed (%d): %s", code, errOut)
	}

	out, _, code := runCLI(t, dir, "ls", "-s", "To Do")
	if code != 0 {
		t.Fatalf("ls exit = %d", code)
	}

	posA := strings.Index(out, a)
	posB := strings.Index(out, b)
	posC := strings.Index(out, c)

	if posC == -1 || posA == -1 || posB == -1 {
		t.Fatalf("ls output missing tasks:\n%s", out)
	}

	if !(posC < posA && posA < posB) {
		t.Fatalf("order wrong, want %s < %s < %s:\n%s", c, a, b, out)
	}
}

func Test_Move_ChangesColumn_When_StatusGiven(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "migrating")

	_, errOut, code := runCLI(t, dir, "move", id, "-s", "In Progress")
	if code != 0 {
		t.Fatalf("move failed (%d): %s", code, errOut)
	}

	out, _, _ := runCLI(t, dir, "show", id)
	if !strings.Contains(out, "status: In Progress") {
		t.Fatalf("status not changed:\n%s", out)
	}
}

func Test_ArchivePromote_RelocateFile_When_Invoked(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "to archive")

	_, errOut, code := runCLI(t, dir, "archive", id)
	if code != 0 {
		t.Fatalf("archive failed (%d): %s", code, errOut)
	}

	archived := filepath.Join(dir, "backlog", "archive", "tasks", id+".md")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("archived file missing: %v", err)
	}

	_, errOut, code = runCLI(t, dir, "promote", id)
	if code != 0 {
		t.Fatalf("promote failed (%d): %s", code, errOut)
	}

	if _, err := os.Stat(filepath.Join(dir, "backlog", "tasks", id+".md")); err != nil {
		t.Fatalf("promoted file missing: %v", err)
	}
}

func Test_Rm_DeletesFile_When_TaskExists(t *testing.T) {
	dir := setupProject(t)

	id := mustCreate(t, dir, "doomed")

	_, errOut, code := runCLI(t, dir, "rm", id)
	if code != 0 {
		t.Fatalf("rm failed (%d): %s", code, errOut)
	}

	if _, err := os.Stat(filepath.Join(dir, "backlog", "tasks", id+".md")); !os.IsNotExist(err) {
		t.Fatalf("file still present after rm: %v", err)
	}

	_, _, code = runCLI(t, dir, "show", id)
	if code == 0 {
		t.Fatal("show should fail after rm")
	}
}

func Test_Run_PrintsUsage_When_CommandUnknown(t *testing.T) {
	dir := setupProject(t)

	_, errOut, code := runCLI(t, dir, "frobnicate")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}

	if !strings.Contains(errOut, "unknown command") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func Test_Config_PrintsProjectOverrides_When_ProjectFilePresent(t *testing.T) {
	dir := setupProject(t)

	project := `{
		// project-level overrides
		"id_prefix": "BUG",
		"statuses": ["Open", "Closed"],
		"done_statuses": ["Closed"],
	}`

	err := os.WriteFile(filepath.Join(dir, ".backlog.json"), []byte(project), 0o600)
	if err != nil {
		t.Fatalf("write project config: %v", err)
	}

	out, errOut, code := runCLI(t, dir, "config")
	if code != 0 {
		t.Fatalf("config failed (%d): %s", code, errOut)
	}

	if !strings.Contains(out, "id_prefix: BUG") || !strings.Contains(out, "statuses: Open, Closed") {
		t.Fatalf("config output = %q", out)
	}

	id := mustCreate(t, dir, "uses the prefix")
	if id != "BUG-1" {
		t.Fatalf("id = %q, want BUG-1", id)
	}
}
