package workspace

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a.txt", want: "a.txt"},
		{in: "./src/main.go", want: "src/main.go"},
		{in: `src\win.go`, want: "src/win.go"},
		{in: "a//b.txt", want: "a/b.txt"},
		{in: "", wantErr: true},
		{in: "/abs.txt", wantErr: true},
		{in: "../up.txt", wantErr: true},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Normalize(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	t.Parallel()

	ws := New()
	if err := ws.Create("src/app.go", "package app\n"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ws.Create("src/app.go", "again"); err == nil {
		t.Fatal("expected duplicate create to fail")
	}

	f, ok := ws.Get("src/app.go")
	if !ok {
		t.Fatal("expected file after create")
	}
	if f.Name != "app.go" {
		t.Fatalf("name should be the final segment, got %q", f.Name)
	}
	if f.Size != len("package app\n") {
		t.Fatalf("unexpected size %d", f.Size)
	}

	if err := ws.Update("src/app.go", "package app2\n"); err != nil {
		t.Fatalf("update: %v", err)
	}
	f, _ = ws.Get("src/app.go")
	if f.Content != "package app2\n" {
		t.Fatalf("update did not stick: %q", f.Content)
	}

	if err := ws.Update("nope.go", "x"); err == nil {
		t.Fatal("expected update of missing file to fail")
	}

	if err := ws.Delete("src/app.go"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ws.Exists("src/app.go") {
		t.Fatal("file should be gone")
	}
	if err := ws.Delete("src/app.go"); err == nil {
		t.Fatal("expected second delete to fail")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	ws := New()
	if err := ws.Create("a.txt", "original"); err != nil {
		t.Fatalf("create: %v", err)
	}
	f, _ := ws.Get("a.txt")
	f.Content = "mutated from outside"

	again, _ := ws.Get("a.txt")
	if again.Content != "original" {
		t.Fatal("external mutation leaked into the store")
	}
}

func TestTokenEstimate(t *testing.T) {
	t.Parallel()

	ws := New()
	if err := ws.Create("t.txt", "12345678"); err != nil {
		t.Fatalf("create: %v", err)
	}
	f, _ := ws.Get("t.txt")
	if f.TokenEstimate != 2 {
		t.Fatalf("expected 2 tokens for 8 chars, got %d", f.TokenEstimate)
	}
}

func TestTreeLazyRebuild(t *testing.T) {
	t.Parallel()

	ws := New()
	for _, p := range []string{"b.txt", "src/main.go", "src/util/io.go", "a.txt"} {
		if err := ws.Create(p, "x"); err != nil {
			t.Fatalf("create %s: %v", p, err)
		}
	}

	tree := ws.Tree()
	if tree != ws.Tree() {
		t.Fatal("tree should be cached between reads")
	}

	// dirs first, then files by name
	if len(tree.Children) != 3 {
		t.Fatalf("expected 3 top-level entries, got %d", len(tree.Children))
	}
	if tree.Children[0].Name != "src" || !tree.Children[0].IsDir {
		t.Fatalf("expected src dir first, got %+v", tree.Children[0])
	}
	if tree.Children[1].Name != "a.txt" || tree.Children[2].Name != "b.txt" {
		t.Fatalf("expected files sorted by name, got %q %q", tree.Children[1].Name, tree.Children[2].Name)
	}

	src := tree.Children[0]
	if len(src.Children) != 2 || src.Children[0].Name != "util" {
		t.Fatalf("unexpected src children: %+v", src.Children)
	}

	if err := ws.Delete("a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rebuilt := ws.Tree()
	if rebuilt == tree {
		t.Fatal("mutation should invalidate the cached tree")
	}
	if len(rebuilt.Children) != 2 {
		t.Fatalf("expected 2 top-level entries after delete, got %d", len(rebuilt.Children))
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	ws := New()
	if err := ws.Create("x.txt", "keep me"); err != nil {
		t.Fatalf("create: %v", err)
	}
	snap := ws.Snapshot()

	if err := ws.Create("y.txt", "new"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ws.Delete("x.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// the snapshot is isolated from live mutations
	if len(snap.Files) != 1 || snap.Files[0].Path != "x.txt" {
		t.Fatalf("snapshot changed under mutation: %+v", snap.Files)
	}

	if err := ws.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !ws.Exists("x.txt") || ws.Exists("y.txt") {
		t.Fatalf("restore did not recover prior state: %v", ws.Files())
	}
}

func TestRestoreRejectsCorruptSnapshotWithoutPartialApply(t *testing.T) {
	t.Parallel()

	ws := New()
	if err := ws.Create("live.txt", "live"); err != nil {
		t.Fatalf("create: %v", err)
	}
	bad := &Snapshot{Files: []File{{Path: "a.txt"}, {Path: "a.txt"}}}
	if err := ws.Restore(bad); err == nil {
		t.Fatal("expected duplicate-path snapshot to fail")
	}
	if !ws.Exists("live.txt") {
		t.Fatal("failed restore must leave live state untouched")
	}
}
