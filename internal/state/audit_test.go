package state

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/ops"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecordAndListBatches(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	ctx := context.Background()

	result := &engine.Result{
		Status: engine.StatusCompleted,
		Executed: []engine.OpResult{
			{Kind: ops.KindCreate, Path: "a.txt", Outcome: engine.OutcomeApplied},
			{Kind: ops.KindEdit, Path: "b.txt", Outcome: engine.OutcomeApplied},
		},
		Failed: []engine.OpResult{
			{Kind: ops.KindDelete, Path: "ghost.txt", Outcome: engine.OutcomeFailed, Reason: "not found"},
		},
	}
	if err := db.RecordBatch(ctx, "Create `a.txt` and update `b.txt`", result); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := db.ListBatches(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Status != string(engine.StatusCompleted) {
		t.Fatalf("unexpected status %q", r.Status)
	}
	if r.CreatedCount != 1 || r.EditedCount != 1 || r.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", r)
	}
	if !strings.Contains(r.Detail, "not found") {
		t.Fatalf("expected failure detail, got %q", r.Detail)
	}
}

func TestRecordBatchScrubsSecrets(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	ctx := context.Background()

	response := "API_KEY=supersecretvalue\nCreate `x.txt`"
	if err := db.RecordBatch(ctx, response, &engine.Result{Status: engine.StatusCancelled}); err != nil {
		t.Fatalf("record: %v", err)
	}
	records, err := db.ListBatches(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(records[0].ResponseExcerpt, "supersecretvalue") {
		t.Fatal("secret leaked into audit log")
	}
	if !strings.Contains(records[0].ResponseExcerpt, "API_KEY=[REDACTED]") {
		t.Fatalf("expected redaction marker, got %q", records[0].ResponseExcerpt)
	}
}

func TestListBatchesNewestFirst(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	ctx := context.Background()

	for _, status := range []engine.Status{engine.StatusCompleted, engine.StatusCancelled} {
		if err := db.RecordBatch(ctx, "text", &engine.Result{Status: status}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	records, err := db.ListBatches(ctx, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Status != string(engine.StatusCancelled) {
		t.Fatalf("expected newest first, got %q", records[0].Status)
	}
}

func TestExcerptTruncationKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	db := testDB(t)
	ctx := context.Background()

	// 3-byte runes sized so the byte limit lands mid-rune
	response := strings.Repeat("日", excerptLimit)
	result := &engine.Result{Status: engine.StatusCompleted}
	if err := db.RecordBatch(ctx, response, result); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := db.ListBatches(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	excerpt := records[0].ResponseExcerpt
	if len(excerpt) > excerptLimit {
		t.Fatalf("excerpt exceeds limit: %d bytes", len(excerpt))
	}
	if !utf8.ValidString(excerpt) {
		t.Fatal("excerpt is not valid UTF-8")
	}
}
