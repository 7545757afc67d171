package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskdesk/database"
	"taskdesk/models"
	"taskdesk/utilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	utilities.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakeSession struct{ id string }

func (f fakeSession) CurrentUserID() (string, bool) { return f.id, f.id != "" }

func newStore(t *testing.T, kv database.KV, userID string) *Store {
	t.Helper()
	s := NewStore(kv, fakeSession{id: userID}, WithClock(func() time.Time { return fixedNow }))
	s.Restore(context.Background())
	return s
}

func draft(title string, status models.Status, assignee models.Assignee) models.TaskDraft {
	return models.TaskDraft{
		Title:      title,
		Priority:   models.PriorityLow,
		Status:     status,
		Deadline:   fixedNow.Add(48 * time.Hour),
		AssignedTo: assignee,
	}
}

func TestRestoreSeedsAndPersistsWhenEmpty(t *testing.T) {
	kv := database.NewMemory()
	s := NewStore(kv, nil, WithClock(func() time.Time { return fixedNow }))
	assert.True(t, s.Loading())

	s.Restore(context.Background())
	assert.False(t, s.Loading())

	stats := s.Stats()
	assert.Equal(t, models.TaskStats{Total: 6, Completed: 1, InProgress: 2, Pending: 2, Expired: 1}, stats)

	raw, ok, err := kv.Get(context.Background(), "tasks")
	require.NoError(t, err)
	require.True(t, ok, "seed must be persisted")

	var stored []models.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, s.Tasks(), stored)

	statuses := make([]models.Status, 0, len(stored))
	for _, task := range stored {
		statuses = append(statuses, task.Status)
	}
	assert.Equal(t, []models.Status{
		models.StatusInProgress, models.StatusPending, models.StatusCompleted,
		models.StatusPending, models.StatusInProgress, models.StatusExpired,
	}, statuses)
}

func TestRestoreUsesStoredCollection(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemory()
	require.NoError(t, kv.Set(ctx, "tasks", `[{"id":"a","title":"Only","priority":"High","status":"pending","deadline":"2025-01-01T00:00:00Z","assignedTo":{"id":"2","name":"Employee User"},"createdBy":"1"}]`))

	s := newStore(t, kv, "")
	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Only", tasks[0].Title)
	assert.Equal(t, models.Assignee{ID: "2", Name: "Employee User"}, tasks[0].AssignedTo)
}

func TestRestoreFailureKeepsEmptyCollectionAndClearsLoading(t *testing.T) {
	ctx := context.Background()

	t.Run("read error", func(t *testing.T) {
		kv := database.NewFaulty(database.NewMemory())
		kv.FailGet(true)
		s := newStore(t, kv, "")

		assert.False(t, s.Loading())
		assert.Empty(t, s.Tasks())
		assert.Equal(t, 0, kv.Sets(), "nothing must be written after a failed read")
	})

	t.Run("malformed json", func(t *testing.T) {
		inner := database.NewMemory()
		require.NoError(t, inner.Set(ctx, "tasks", "[{oops"))
		kv := database.NewFaulty(inner)
		s := newStore(t, kv, "")

		assert.False(t, s.Loading())
		assert.Empty(t, s.Tasks())
		assert.Equal(t, 0, kv.Sets())
		select {
		case <-s.Ready():
		default:
			t.Fatal("Ready channel should be closed")
		}
	})
}

func TestAddAttributesCreatorAndAppearsInStatusView(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")
	before := s.Tasks()

	task, ok := s.Add(context.Background(), models.TaskDraft{
		Title:      "X",
		Priority:   models.PriorityLow,
		Deadline:   fixedNow,
		Status:     models.StatusPending,
		AssignedTo: models.Assignee{ID: "2", Name: "Employee User"},
	})
	require.True(t, ok)

	assert.Equal(t, "1", task.CreatedBy)
	assert.NotEmpty(t, task.ID)
	for _, existing := range before {
		assert.NotEqual(t, existing.ID, task.ID)
	}
	assert.Len(t, s.Tasks(), len(before)+1)
	assert.Contains(t, s.ByStatus(models.StatusPending), task)
}

func TestAddWithoutSessionUsesUnknownCreator(t *testing.T) {
	s := newStore(t, database.NewMemory(), "")
	task, ok := s.Add(context.Background(), draft("Orphan", models.StatusPending, employeeUser))
	require.True(t, ok)
	assert.Equal(t, UnknownCreator, task.CreatedBy)

	s = NewStore(database.NewMemory(), nil)
	s.Restore(context.Background())
	task, ok = s.Add(context.Background(), draft("Orphan", models.StatusPending, employeeUser))
	require.True(t, ok)
	assert.Equal(t, UnknownCreator, task.CreatedBy)
}

func TestAddRerollsCollidingID(t *testing.T) {
	ids := []string{"1", "1", "fresh"}
	var mu sync.Mutex
	next := func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		ids = ids[1:]
		return id
	}

	s := NewStore(database.NewMemory(), nil, WithClock(func() time.Time { return fixedNow }), WithIDGenerator(next))
	s.Restore(context.Background())

	task, ok := s.Add(context.Background(), draft("New", models.StatusPending, adminUser))
	require.True(t, ok)
	assert.Equal(t, "fresh", task.ID)
}

func TestAddManyKeepsIDsUnique(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")
	for i := 0; i < 50; i++ {
		_, ok := s.Add(context.Background(), draft(fmt.Sprintf("task %d", i), models.StatusPending, adminUser))
		require.True(t, ok)
	}

	seen := map[string]bool{}
	for _, task := range s.Tasks() {
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
	assert.Len(t, seen, 56)
}

func TestUpdateChangesOnlyPatchedFields(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")
	before, ok := s.Get("2")
	require.True(t, ok)

	status := models.StatusCompleted
	require.True(t, s.Update(context.Background(), "2", models.TaskPatch{Status: &status}))

	after, ok := s.Get("2")
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, after.Status)

	after.Status = before.Status
	assert.Equal(t, before, after, "fields outside the patch must not change")
}

func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	kv := database.NewFaulty(database.NewMemory())
	s := newStore(t, kv, "1")
	before := s.Tasks()
	writes := kv.Sets()

	title := "ghost"
	assert.True(t, s.Update(context.Background(), "missing", models.TaskPatch{Title: &title}))
	assert.Equal(t, before, s.Tasks())
	assert.Equal(t, writes+1, kv.Sets(), "no-op update still persists")
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")
	before := s.Tasks()

	require.True(t, s.Delete(context.Background(), "3"))
	after := s.Tasks()
	require.Len(t, after, len(before)-1)

	expected := append([]models.Task{}, before[:2]...)
	expected = append(expected, before[3:]...)
	assert.Equal(t, expected, after)

	_, ok := s.Get("3")
	assert.False(t, ok)

	assert.True(t, s.Delete(context.Background(), "3"))
	assert.Len(t, s.Tasks(), len(before)-1)
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := database.NewFaulty(database.NewMemory())
	s := newStore(t, kv, "1")
	before := s.Tasks()
	stored, _, err := kv.Get(ctx, "tasks")
	require.NoError(t, err)

	kv.FailSet(true)

	_, ok := s.Add(ctx, draft("lost", models.StatusPending, adminUser))
	assert.False(t, ok)

	status := models.StatusCompleted
	assert.False(t, s.Update(ctx, "1", models.TaskPatch{Status: &status}))
	assert.False(t, s.Delete(ctx, "1"))

	n, ok := s.ExpireOverdue(ctx, fixedNow.Add(30*24*time.Hour))
	assert.False(t, ok)
	assert.Zero(t, n)

	assert.Equal(t, before, s.Tasks())

	kv.FailSet(false)
	after, _, err := kv.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, stored, after)
}

func TestStatsTotalMatchesBuckets(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")
	_, ok := s.Add(context.Background(), draft("a", models.StatusCompleted, adminUser))
	require.True(t, ok)
	require.True(t, s.Delete(context.Background(), "2"))

	stats := s.Stats()
	assert.Equal(t, len(s.Tasks()), stats.Total)
	assert.Equal(t, stats.Total, stats.Completed+stats.InProgress+stats.Pending+stats.Expired)
}

func TestFiltersArePureAndOrderPreserving(t *testing.T) {
	s := newStore(t, database.NewMemory(), "1")

	first := s.ByStatus(models.StatusPending)
	second := s.ByStatus(models.StatusPending)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "2", first[0].ID)
	assert.Equal(t, "4", first[1].ID)

	mine := s.ByAssignee("2")
	ids := []string{}
	for _, task := range mine {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"2", "4", "6"}, ids)

	high := s.ByPriority(models.PriorityHigh)
	assert.Len(t, high, 3)

	combined := s.Query(Filter{Status: models.StatusInProgress, AssigneeID: "1"})
	assert.Len(t, combined, 2)

	assert.Empty(t, s.ByAssignee("nobody"))

	// mexer na cópia não altera o store
	first[0].Title = "changed"
	again, _ := s.Get("2")
	assert.Equal(t, "Review design mockups", again.Title)
}

func TestExpireOverdueOnlyTouchesOpenPastDeadlines(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, database.NewMemory(), "1")

	// nada vencido em relação ao relógio do seed: 3 (completed) e 6 (expired) já estão no passado
	n, ok := s.ExpireOverdue(ctx, fixedNow)
	require.True(t, ok)
	assert.Zero(t, n)

	n, ok = s.ExpireOverdue(ctx, fixedNow.Add(50*time.Hour))
	require.True(t, ok)
	assert.Equal(t, 2, n) // 1 (in_progress, +24h) e 2 (pending, +48h)

	task1, _ := s.Get("1")
	task3, _ := s.Get("3")
	task4, _ := s.Get("4")
	assert.Equal(t, models.StatusExpired, task1.Status)
	assert.Equal(t, models.StatusCompleted, task3.Status)
	assert.Equal(t, models.StatusPending, task4.Status)
}

func TestStatusIsNeverExpiredImplicitly(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, database.NewMemory(), "1")

	past := draft("late", models.StatusPending, adminUser)
	past.Deadline = fixedNow.Add(-72 * time.Hour)
	task, ok := s.Add(ctx, past)
	require.True(t, ok)

	title := "still late"
	require.True(t, s.Update(ctx, task.ID, models.TaskPatch{Title: &title}))

	got, _ := s.Get(task.ID)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestRoundTripThroughFreshStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storage.json")

	kv, err := database.NewFile(path)
	require.NoError(t, err)
	s := newStore(t, kv, "1")
	_, ok := s.Add(ctx, draft("persisted", models.StatusInProgress, employeeUser))
	require.True(t, ok)
	desc := "edited"
	require.True(t, s.Update(ctx, "4", models.TaskPatch{Description: &desc}))
	require.True(t, s.Delete(ctx, "5"))

	reopened, err := database.NewFile(path)
	require.NoError(t, err)
	fresh := newStore(t, reopened, "")

	assert.Equal(t, s.Tasks(), fresh.Tasks())
}

func TestConcurrentMutationsAreNotLost(t *testing.T) {
	ctx := context.Background()
	kv := database.NewMemory()
	s := newStore(t, kv, "1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := s.Add(ctx, draft(fmt.Sprintf("parallel %d", i), models.StatusPending, adminUser))
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Tasks(), 26)

	fresh := newStore(t, kv, "")
	assert.Len(t, fresh.Tasks(), 26, "persisted snapshot must contain every add")
}
