package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yubzen/fileops/internal/ops"
	"github.com/yubzen/fileops/internal/workspace"
)

type fakeConfirm struct {
	answer  bool
	err     error
	calls   int
	lastReq ConfirmRequest
}

func (f *fakeConfirm) Confirm(_ context.Context, req ConfirmRequest) (bool, error) {
	f.calls++
	f.lastReq = req
	return f.answer, f.err
}

type fakeNotifier struct {
	levels   []Level
	messages []string
	actions  []Action
}

func (f *fakeNotifier) Notify(level Level, message string, actions ...Action) {
	f.levels = append(f.levels, level)
	f.messages = append(f.messages, message)
	f.actions = append(f.actions, actions...)
}

type fakeEditor struct {
	open     map[string]bool
	reloaded []string
	closed   []string
}

func (f *fakeEditor) IsOpen(path string) bool { return f.open[path] }
func (f *fakeEditor) Reload(path string)      { f.reloaded = append(f.reloaded, path) }
func (f *fakeEditor) Close(path string)       { f.closed = append(f.closed, path) }

func newEngine(ws *workspace.Workspace) (*Engine, *fakeConfirm, *fakeNotifier) {
	confirm := &fakeConfirm{answer: true}
	notifier := &fakeNotifier{}
	return &Engine{
		Workspace: ws,
		Confirm:   confirm,
		Notifier:  notifier,
		Editor:    NoopEditor{},
	}, confirm, notifier
}

func mustCreate(t *testing.T, ws *workspace.Workspace, path, content string) {
	t.Helper()
	if err := ws.Create(path, content); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

func TestRunParseEmptyIsSilent(t *testing.T) {
	t.Parallel()

	eng, confirm, notifier := newEngine(workspace.New())
	res, err := eng.Run(context.Background(), "Just an explanation, no files involved.")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, confirm.calls)
	assert.Empty(t, notifier.messages)
}

func TestRunHappyPathCreate(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, confirm, _ := newEngine(ws)

	res, err := eng.Run(context.Background(), "Create `hello.txt`:\n```\nhi there\n```\n")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusCompleted, res.Status)
	require.Len(t, res.Executed, 1)
	assert.Equal(t, OutcomeApplied, res.Executed[0].Outcome)

	f, ok := ws.Get("hello.txt")
	require.True(t, ok)
	assert.Equal(t, "hi there", f.Content)

	// pure-create batches never prompt
	assert.Zero(t, confirm.calls)
}

func TestValidationRejectsWholeBatch(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, _, notifier := newEngine(ws)

	payload := `{"operations":[
		{"operation":"create_file","path":"good.txt","content":"x"},
		{"operation":"edit_file","path":"nocontent.txt"}
	]}`
	res, err := eng.Run(context.Background(), payload)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusFailed, res.Status)

	var verr *ops.ValidationError
	assert.True(t, errors.As(err, &verr))

	// batch-level rejection: nothing executed, one error notification
	assert.Equal(t, 0, ws.Len())
	require.NotEmpty(t, notifier.levels)
	assert.Equal(t, LevelError, notifier.levels[0])
}

func TestCreateCollisionRenames(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "a.txt", "first")
	mustCreate(t, ws, "a_1.txt", "second")
	eng, _, _ := newEngine(ws)

	res, err := eng.Run(context.Background(), "Create `a.txt`:\n```\nthird\n```\n")
	require.NoError(t, err)
	require.Len(t, res.Executed, 1)
	assert.Equal(t, OutcomeRenamed, res.Executed[0].Outcome)
	assert.Equal(t, "a_2.txt", res.Executed[0].FinalPath)

	f, ok := ws.Get("a_2.txt")
	require.True(t, ok)
	assert.Equal(t, "third", f.Content)
	f, _ = ws.Get("a.txt")
	assert.Equal(t, "first", f.Content)
}

func TestEditOnMissingDegradesToCreate(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, confirm, _ := newEngine(ws)

	res, err := eng.Run(context.Background(), "Update `b.txt`:\n```\nfresh\n```\n")
	require.NoError(t, err)
	require.Len(t, res.Executed, 1)
	assert.Equal(t, OutcomeDegraded, res.Executed[0].Outcome)
	assert.True(t, ws.Exists("b.txt"))

	// the edit target did not exist, so nothing was destructive
	assert.Zero(t, confirm.calls)
	assert.Equal(t, 1, res.Counts()[ops.KindCreate])
}

func TestPartialFailureIsolation(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, confirm, _ := newEngine(ws)
	confirm.answer = true

	payload := `{"operations":[
		{"operation":"create_file","path":"one.txt","content":"1"},
		{"operation":"delete_file","path":"ghost.txt"},
		{"operation":"create_file","path":"three.txt","content":"3"}
	]}`
	res, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Len(t, res.Executed, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "not found", res.Failed[0].Reason)
	assert.True(t, ws.Exists("one.txt"))
	assert.True(t, ws.Exists("three.txt"))
}

func TestDestructiveGatePromptsAndDenialMutatesNothing(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "keep.txt", "original")
	eng, confirm, notifier := newEngine(ws)
	confirm.answer = false

	payload := `{"operations":[
		{"operation":"create_file","path":"new.txt","content":"n"},
		{"operation":"delete_file","path":"keep.txt"}
	]}`
	res, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, 1, confirm.calls)

	// denial aborts the whole batch, including the non-destructive create
	assert.False(t, ws.Exists("new.txt"))
	assert.True(t, ws.Exists("keep.txt"))
	assert.False(t, eng.CanUndo())
	require.NotEmpty(t, notifier.levels)
	assert.Equal(t, LevelWarning, notifier.levels[0])
}

func TestOverwritingEditIsDestructiveAndCarriesDiff(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "cfg.json", "{\"a\": 1}")
	eng, confirm, _ := newEngine(ws)

	payload := `{"operations":[{"operation":"edit_file","path":"cfg.json","content":"{\"a\": 2}"}]}`
	_, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, 1, confirm.calls)
	require.Contains(t, confirm.lastReq.Diffs, "cfg.json")
	assert.Contains(t, confirm.lastReq.Diffs["cfg.json"], "+ ")
}

func TestConfirmContextCancellationCancelsBatch(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "x.txt", "x")
	eng, confirm, _ := newEngine(ws)
	confirm.err = context.Canceled

	res, err := eng.Run(context.Background(), `{"operations":[{"operation":"delete_file","path":"x.txt"}]}`)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.True(t, ws.Exists("x.txt"))
}

func TestUndoRestoresExactPriorState(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "x.txt", "precious")
	eng, _, _ := newEngine(ws)

	payload := `{"operations":[
		{"operation":"create_file","path":"y.txt","content":"new"},
		{"operation":"delete_file","path":"x.txt"}
	]}`
	_, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, ws.Exists("y.txt"))
	assert.False(t, ws.Exists("x.txt"))

	require.NoError(t, eng.Undo())
	assert.True(t, ws.Exists("x.txt"))
	assert.False(t, ws.Exists("y.txt"))
	f, _ := ws.Get("x.txt")
	assert.Equal(t, "precious", f.Content)

	// single-use snapshot
	assert.ErrorIs(t, eng.Undo(), ErrNothingToUndo)
}

func TestNewBatchSupersedesBackup(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, _, _ := newEngine(ws)

	_, err := eng.Run(context.Background(), `{"operations":[{"operation":"create_file","path":"first.txt","content":"1"}]}`)
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), `{"operations":[{"operation":"create_file","path":"second.txt","content":"2"}]}`)
	require.NoError(t, err)

	// undo only reverses the latest batch
	require.NoError(t, eng.Undo())
	assert.True(t, ws.Exists("first.txt"))
	assert.False(t, ws.Exists("second.txt"))
}

func TestEditorSyncReloadAndClose(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "open.go", "old")
	mustCreate(t, ws, "gone.go", "bye")
	editor := &fakeEditor{open: map[string]bool{"open.go": true, "gone.go": true}}
	eng, _, _ := newEngine(ws)
	eng.Editor = editor

	payload := `{"operations":[
		{"operation":"edit_file","path":"open.go","content":"new"},
		{"operation":"delete_file","path":"gone.go"}
	]}`
	_, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, []string{"open.go"}, editor.reloaded)
	assert.Equal(t, []string{"gone.go"}, editor.closed)
}

func TestSuccessNotificationOffersUndoOnce(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, _, notifier := newEngine(ws)

	_, err := eng.Run(context.Background(), `{"operations":[{"operation":"create_file","path":"n.txt","content":"x"}]}`)
	require.NoError(t, err)
	require.NotEmpty(t, notifier.actions)
	undo := notifier.actions[0]
	assert.Equal(t, "Undo", undo.Label)
	require.NoError(t, undo.Run())
	assert.False(t, ws.Exists("n.txt"))
	assert.ErrorIs(t, undo.Run(), ErrNothingToUndo)
}

func TestExecutionOrderIsArrayOrder(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	eng, _, _ := newEngine(ws)

	// the second create collides with the first within the same batch,
	// proving ops see live post-sibling state
	payload := `{"operations":[
		{"operation":"create_file","path":"dup.txt","content":"first"},
		{"operation":"create_file","path":"dup.txt","content":"second"}
	]}`
	res, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, res.Executed, 2)
	assert.Equal(t, OutcomeApplied, res.Executed[0].Outcome)
	assert.Equal(t, OutcomeRenamed, res.Executed[1].Outcome)
	assert.Equal(t, "dup_1.txt", res.Executed[1].FinalPath)
}

func TestDotPrefixedEditAndDeleteHitExistingFiles(t *testing.T) {
	t.Parallel()

	ws := workspace.New()
	mustCreate(t, ws, "a.txt", "original")
	mustCreate(t, ws, "b.txt", "gone soon")
	eng, confirm, _ := newEngine(ws)

	payload := `{"operations":[
		{"operation":"edit_file","path":"./a.txt","content":"updated"},
		{"operation":"delete_file","path":"./b.txt"}
	]}`
	res, err := eng.Run(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, res.Status)

	// both target existing files, so the gate must prompt
	require.Equal(t, 1, confirm.calls)
	require.Contains(t, confirm.lastReq.Diffs, "a.txt")

	assert.Len(t, res.Executed, 2)
	assert.Empty(t, res.Failed)
	f, ok := ws.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "updated", f.Content)
	assert.False(t, ws.Exists("b.txt"))
}
