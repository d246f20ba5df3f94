package tasks

import (
	"fmt"
	"testing"
	"time"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*Repository, *state.MemoryStore) {
	t.Helper()
	store := state.NewMemoryStore()
	repo := New(store)
	n := 0
	repo.newID = func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
	return repo, store
}

func TestAddAndLookup(t *testing.T) {
	repo, _ := newRepo(t)

	task, err := repo.Add("  write report  ", "", "Work", "red")
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "write report", task.Text)
	assert.Equal(t, "Work", task.Tag)
	assert.Equal(t, "red", task.Priority)

	got, ok := repo.Lookup("t1")
	assert.True(t, ok)
	assert.Equal(t, task, got)

	_, ok = repo.Lookup("nope")
	assert.False(t, ok)
}

func TestAddDefaultsAndValidation(t *testing.T) {
	repo, _ := newRepo(t)

	task, err := repo.Add("x", "", "Chores", "purple")
	require.NoError(t, err)
	assert.Equal(t, "Misc", task.Tag)
	assert.Equal(t, "green", task.Priority)

	_, err = repo.Add("   ", "", "", "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = repo.Add("y", "tomorrow", "", "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestToggleDeleteClear(t *testing.T) {
	repo, _ := newRepo(t)
	for _, text := range []string{"a", "b", "c"} {
		_, err := repo.Add(text, "", "", "")
		require.NoError(t, err)
	}

	toggled, err := repo.Toggle("t2")
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	active, err := repo.List(FilterActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	done, err := repo.List(FilterCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "b", done[0].Text)

	removed, err := repo.ClearCompleted()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.NoError(t, repo.Delete("t1"))
	all, err := repo.List(FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c", all[0].Text)

	assert.True(t, errors.Is(repo.Delete("t1"), errors.ErrCodeTaskNotFound))
	_, err = repo.Toggle("t9")
	assert.True(t, errors.Is(err, errors.ErrCodeTaskNotFound))
}

func TestLoadCorruptList(t *testing.T) {
	repo, store := newRepo(t)
	require.NoError(t, store.Set(StorageKey, "{not json"))

	list, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestFormatDueDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"garbage", ""},
		{"2026-03-14", "Today"},
		{"2026-03-15", "Tomorrow"},
		{"2026-04-01", "Apr 1, 2026"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDueDate(tt.in, now), tt.in)
	}
}
