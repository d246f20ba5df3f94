package models

// Task tags and priorities accepted by the task list.
var (
	TaskTags       = []string{"Personal", "Work", "Misc"}
	TaskPriorities = []string{"red", "yellow", "green"}
)

const (
	DefaultTaskTag      = "Misc"
	DefaultTaskPriority = "green"
)

// Task is an entry of the task list.
type Task struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	DueDate  string `json:"dueDate,omitempty"` // YYYY-MM-DD
	Tag      string `json:"tag,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Theme names accepted by the settings.
var Themes = []string{"light", "dark", "auto"}

// DefaultTheme is used when the stored theme is missing or unknown.
const DefaultTheme = "light"

// Settings is the user's configuration held in the local store.
type Settings struct {
	BlockedSites []string `json:"blockedSites"`
	Theme        string   `json:"theme"`
}
