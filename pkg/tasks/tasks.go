// Package tasks stores the task list in the local key/value store and
// resolves task IDs for the focus session manager.
package tasks

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/state"
)

// StorageKey is the store key holding the JSON task array.
const StorageKey = "todo-app-tasks"

const dueDateLayout = "2006-01-02"

// Filter selects which tasks List returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Repository reads and writes the task list.
type Repository struct {
	store state.Store
	newID func() string
}

// New returns a Repository over store.
func New(store state.Store) *Repository {
	return &Repository{
		store: store,
		newID: func() string { return uuid.NewString() },
	}
}

// Load returns all tasks. A missing or undecodable list is empty.
func (r *Repository) Load() ([]models.Task, error) {
	data, ok, err := r.store.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || data == "" {
		return []models.Task{}, nil
	}
	var list []models.Task
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return []models.Task{}, nil
	}
	return list, nil
}

func (r *Repository) save(list []models.Task) error {
	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageWrite, "marshal tasks")
	}
	return r.store.Set(StorageKey, string(data))
}

// Lookup resolves a task ID. Storage errors resolve to not found.
func (r *Repository) Lookup(id string) (models.Task, bool) {
	list, err := r.Load()
	if err != nil {
		return models.Task{}, false
	}
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Add appends a task. Unknown tags and priorities fall back to the defaults.
func (r *Repository) Add(text, dueDate, tag, priority string) (models.Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.Task{}, errors.InvalidInput("task text is empty")
	}
	if dueDate != "" {
		if _, err := time.Parse(dueDateLayout, dueDate); err != nil {
			return models.Task{}, errors.InvalidInput("due date must be YYYY-MM-DD").WithDetail("dueDate", dueDate)
		}
	}
	if !slices.Contains(models.TaskTags, tag) {
		tag = models.DefaultTaskTag
	}
	if !slices.Contains(models.TaskPriorities, priority) {
		priority = models.DefaultTaskPriority
	}

	list, err := r.Load()
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:       r.newID(),
		Text:     trimmed,
		DueDate:  dueDate,
		Tag:      tag,
		Priority: priority,
	}
	list = append(list, task)
	if err := r.save(list); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Toggle flips the done flag of a task.
func (r *Repository) Toggle(id string) (models.Task, error) {
	list, err := r.Load()
	if err != nil {
		return models.Task{}, err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].Done = !list[i].Done
			if err := r.save(list); err != nil {
				return models.Task{}, err
			}
			return list[i], nil
		}
	}
	return models.Task{}, errors.TaskNotFound(id)
}

// Delete removes a task.
func (r *Repository) Delete(id string) error {
	list, err := r.Load()
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(list), func(t models.Task) bool { return t.ID == id })
	if len(kept) == len(list) {
		return errors.TaskNotFound(id)
	}
	return r.save(kept)
}

// ClearCompleted removes done tasks and returns how many were removed.
func (r *Repository) ClearCompleted() (int, error) {
	list, err := r.Load()
	if err != nil {
		return 0, err
	}
	kept := slices.DeleteFunc(slices.Clone(list), func(t models.Task) bool { return t.Done })
	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(kept)
}

// List returns tasks matching filter in insertion order.
func (r *Repository) List(filter Filter) ([]models.Task, error) {
	list, err := r.Load()
	if err != nil {
		return nil, err
	}
	switch filter {
	case FilterActive:
		return slices.DeleteFunc(list, func(t models.Task) bool { return t.Done }), nil
	case FilterCompleted:
		return slices.DeleteFunc(list, func(t models.Task) bool { return !t.Done }), nil
	default:
		return list, nil
	}
}

// FormatDueDate renders a due date relative to now: "Today", "Tomorrow" or
// "Jan 2, 2006". Empty or unparsable dates render as "".
func FormatDueDate(isoDate string, now time.Time) string {
	if isoDate == "" {
		return ""
	}
	d, err := time.ParseInLocation(dueDateLayout, isoDate, now.Location())
	if err != nil {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Format("Jan 2, 2006")
	}
}
