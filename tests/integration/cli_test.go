// CLI integration tests for satchel.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMain builds the satchel binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "satchel-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "satchel")
	SetSatchelBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/satchel")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{
			Err:    err,
			Output: string(output),
		})
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)

	os.Exit(code)
}

// Test1_Init verifies satchel initialization creates the directories.
func Test1_Init(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunSatchel("init")
	if result.Stdout == "" {
		t.Error("expected init output message")
	}

	if _, err := os.Stat(env.DataDir); os.IsNotExist(err) {
		t.Error("data directory not created")
	}
	dbFile := filepath.Join(env.DataDir, "knapsack.db")
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		t.Error("knapsack.db not created")
	}
}

// Test2_Version verifies version output.
func Test2_Version(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunSatchel("version")
	if !strings.HasPrefix(result.Stdout, "satchel v") {
		t.Errorf("unexpected version output: %q", result.Stdout)
	}
}

// Test3_PackUnpackRoundTrip verifies a document survives pack then unpack.
func Test3_PackUnpackRoundTrip(t *testing.T) {
	env := NewTestEnv(t)

	input := env.WriteFile("value.json", `{"name":"widget","count":3,"tags":["a","b"]}`)
	envPath := filepath.Join(env.TempDir, "value.env.json")

	env.MustRunSatchel("pack", input, "--output", envPath)

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	envelope := ParseJSON[EnvelopeJSON](t, string(data))
	if len(envelope.Table) == 0 {
		t.Error("expected a non-empty reference table")
	}
	head, ok := envelope.Head.(string)
	if !ok || !strings.HasPrefix(head, "<>") {
		t.Errorf("expected head to be a reference token, got %v", envelope.Head)
	}
	if !strings.Contains(string(data), "containers.Dict") {
		t.Error("expected the document to pack as a registered container")
	}

	result := env.MustRunSatchel("unpack", envPath)
	out := ParseJSON[map[string]any](t, result.Stdout)
	if out["name"] != "widget" {
		t.Errorf("unexpected name after round trip: %v", out["name"])
	}
	if out["count"] != float64(3) {
		t.Errorf("unexpected count after round trip: %v", out["count"])
	}
}

// Test4_PutGetList verifies archive storage through the CLI.
func Test4_PutGetList(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunSatchel("init")

	input := env.WriteFile("doc.json", `["alpha","beta"]`)

	putResult := env.MustRunSatchel("put", "docs", input, "--json")
	rec := ParseJSON[RecordJSON](t, putResult.Stdout)
	if rec.ArchiveID == "" {
		t.Fatal("expected an archive ID")
	}
	if rec.Name != "docs" {
		t.Errorf("unexpected record name %q", rec.Name)
	}

	getResult := env.MustRunSatchel("get", rec.ArchiveID)
	values := ParseJSON[[]any](t, getResult.Stdout)
	if len(values) != 2 || values[0] != "alpha" {
		t.Errorf("unexpected get output: %v", values)
	}

	byName := env.MustRunSatchel("get", "docs", "--name")
	if byName.Stdout != getResult.Stdout {
		t.Error("get by name returned different output than get by ID")
	}

	listResult := env.MustRunSatchel("list")
	if !strings.Contains(listResult.Stdout, rec.ArchiveID) {
		t.Error("list output missing the stored record")
	}
}

// Test5_GetByNameReturnsNewest verifies name lookups prefer the newest record.
func Test5_GetByNameReturnsNewest(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunSatchel("init")

	old := env.WriteFile("old.json", `"old"`)
	latest := env.WriteFile("new.json", `"new"`)

	env.MustRunSatchel("put", "doc", old)
	env.MustRunSatchel("put", "doc", latest)

	result := env.MustRunSatchel("get", "doc", "--name")
	if !strings.Contains(result.Stdout, "new") {
		t.Errorf("expected newest record payload, got %q", result.Stdout)
	}
}

// Test6_Delete verifies record removal and not-found errors.
func Test6_Delete(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunSatchel("init")

	input := env.WriteFile("doc.json", `true`)
	putResult := env.MustRunSatchel("put", "doomed", input, "--json")
	rec := ParseJSON[RecordJSON](t, putResult.Stdout)

	env.MustRunSatchel("delete", rec.ArchiveID)

	again := env.RunSatchel("delete", rec.ArchiveID)
	if again.ExitCode == 0 {
		t.Error("expected deleting a missing record to fail")
	}
	if !strings.Contains(again.Stderr, "not found") {
		t.Errorf("expected not-found error, got %q", again.Stderr)
	}

	missing := env.RunSatchel("get", rec.ArchiveID)
	if missing.ExitCode == 0 {
		t.Error("expected get on a deleted record to fail")
	}
}

// Test7_SharedReferencesSurviveStorage verifies aliased values pack once.
func Test7_SharedReferencesSurviveStorage(t *testing.T) {
	env := NewTestEnv(t)

	input := env.WriteFile("value.json", `{"a":[1,2],"b":[1,2]}`)
	envPath := filepath.Join(env.TempDir, "value.env.json")
	env.MustRunSatchel("pack", input, "--output", envPath)

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	envelope := ParseJSON[EnvelopeJSON](t, string(data))

	// root dict plus two distinct lists: JSON decoding cannot alias, so
	// both lists appear as separate container entries
	listEntries := 0
	for _, entry := range envelope.Table {
		if strings.HasSuffix(entry.Type, "containers.List") {
			listEntries++
		}
	}
	if listEntries != 2 {
		t.Errorf("expected 2 list entries, got %d", listEntries)
	}
}
