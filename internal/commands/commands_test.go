package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/backend"
	"lexify/internal/calendar"
	"lexify/internal/core"
)

// Wednesday.
var testNow = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) *App {
	t.Helper()
	res, err := backend.NewFactory(nil).CreateBackend(context.Background(), backend.Config{
		DBPath:   filepath.Join(t.TempDir(), "lexify.db"),
		Location: time.UTC,
		Labels:   calendar.LabelsEN,
		Now:      func() time.Time { return testNow },
		Mirror:   backend.MemoryMirror,
	})
	require.NoError(t, err)
	t.Cleanup(func() { res.Cleanup() })
	return &App{Backend: res.Backend}
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(app)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestTaskCommands(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, app, "task", "add", "Buy", "milk", "--desc", "oat")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added for 2024-06-12")

	out, err = run(t, app, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 [ ] 10:00 Buy milk (oat)")

	out, err = run(t, app, "task", "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Task #1 marked completed")

	out, err = run(t, app, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Wednesday, 2024-06-12")
	assert.Contains(t, out, "#1 [x] 10:00 Buy milk")

	out, err = run(t, app, "task", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Task #1 deleted")

	out, err = run(t, app, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")

	_, err = run(t, app, "task", "rm", "1")
	assert.Error(t, err)
}

func TestTaskAddRejectsBlankTitleAndPastDays(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "task", "add", "   ")
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	_, err = run(t, app, "task", "add", "Too late", "--date", "2024-06-11")
	assert.ErrorIs(t, err, core.ErrPastDay)

	tasks, err := app.Backend.Tasks.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// Past tasks cannot be completed either.
	past, err := app.Backend.Tasks.Add(context.Background(), core.Task{Title: "old", Date: testNow.AddDate(0, 0, -2)})
	require.NoError(t, err)
	_, err = run(t, app, "task", "done", "1")
	assert.ErrorIs(t, err, core.ErrPastDay)
	assert.Equal(t, int64(1), past.ID)
}

func TestIncomeCommands(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "income", "add", "100", "--date", "2024-06-10 09:00", "--note", "shift")
	require.NoError(t, err)
	out, err := run(t, app, "income", "add", "50,00", "--date", "2024-06-10 18:00")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-10 total 150.00")
	_, err = run(t, app, "income", "add", "70", "--date", "2024-06-11 00:00")
	require.NoError(t, err)

	out, err = run(t, app, "income", "list", "--date", "2024-06-10")
	require.NoError(t, err)
	assert.Contains(t, out, "shift")
	assert.Contains(t, out, "Total: 150.00")

	out, err = run(t, app, "income", "list", "--from", "2024-06-10", "--to", "2024-06-11")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 220.00")

	_, err = run(t, app, "income", "add", "0")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = run(t, app, "income", "add", "lots")
	assert.ErrorIs(t, err, core.ErrUnparsableAmount)

	out, err = run(t, app, "income", "rm", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Income #3 deleted")

	out, err = run(t, app, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Income today: 0")
	assert.Contains(t, out, "Income this week: 150")
}

func TestExpenseCommands(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, app, "expense", "add", "12.50", "Food", "--note", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "Food: lunch")
	_, err = run(t, app, "expense", "add", "30", "Transport")
	require.NoError(t, err)
	_, err = run(t, app, "income", "add", "100")
	require.NoError(t, err)

	out, err = run(t, app, "expense", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Food: lunch")
	assert.Contains(t, out, "Total: 42.50")

	out, err = run(t, app, "expense", "list", "--category", "Transport")
	require.NoError(t, err)
	assert.Contains(t, out, "30.00")
	assert.NotContains(t, out, "Food")

	out, err = run(t, app, "expense", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Period:   2024-06-10 .. 2024-06-12")
	assert.Contains(t, out, "Balance:       57.50")
	assert.Less(t, strings.Index(out, "Transport"), strings.Index(out, "Food"))

	out, err = run(t, app, "expense", "summary", "--categories")
	require.NoError(t, err)
	assert.Equal(t, "Food\nTransport\n", out)

	_, err = run(t, app, "expense", "add", "5", "  ")
	assert.ErrorIs(t, err, core.ErrEmptyCategory)

	out, err = run(t, app, "expense", "rm", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense #2 deleted")
}

func TestCalendarCommand(t *testing.T) {
	app := newTestApp(t)
	_, err := run(t, app, "income", "add", "150", "--date", "2024-06-10 09:00")
	require.NoError(t, err)

	out, err := run(t, app, "calendar")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, strings.Fields(lines[0]))
	// The grid starts two weeks before Monday 2024-06-10.
	assert.Equal(t, "27", strings.Fields(lines[1])[0])
	assert.Equal(t, []string{"10", "11", "[12]", "13", "14", "15", "16"}, strings.Fields(lines[5]))
	assert.Equal(t, "150", strings.Fields(lines[6])[0])
}

func TestImportCommand(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "data.yaml")
	doc := "tasks:\n  - title: Imported\nexpenses:\n  - amount: \"3\"\n    category: Coffee\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := run(t, app, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 tasks, 0 incomes, 1 expenses")

	_, err = run(t, app, "import", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read input")
}

func TestWatchOnce(t *testing.T) {
	app := newTestApp(t)
	_, err := run(t, app, "task", "add", "Visible")
	require.NoError(t, err)
	_, err = run(t, app, "income", "add", "20")
	require.NoError(t, err)

	out, err := run(t, app, "watch", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "[12]")
	assert.Contains(t, out, "Visible")
	assert.Contains(t, out, "Income today: 20, this week: 20")

	out, err = run(t, app, "watch", "--once", "--day", "2024-06-11")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-06-11 (read-only)")
	assert.Contains(t, out, "No tasks.")
}

func TestInvalidID(t *testing.T) {
	app := newTestApp(t)
	_, err := run(t, app, "task", "done", "abc")
	assert.ErrorContains(t, err, `invalid id "abc"`)
}
