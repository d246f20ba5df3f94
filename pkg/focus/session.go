package focus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/grovetools/focus/pkg/models"
)

// StorageKey is the store key holding the persisted focus session.
const StorageKey = "todo-app-focus"

// encodeSession serializes an active session for the store.
func encodeSession(s models.FocusSession) (string, error) {
	if s.BlockedSites == nil {
		s.BlockedSites = []string{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// storedSession is the on-disk record. Active is a pointer so a record
// written without the field can be told apart from an explicit false.
type storedSession struct {
	Active       *bool    `json:"active"`
	TaskID       string   `json:"taskId"`
	StartTime    int64    `json:"startTime"`
	BlockedSites []string `json:"blockedSites"`
}

// decodeSession parses a stored record. A missing active field defaults to
// true. Anything that is not a complete active session reports false:
// malformed JSON, wrong field types, an explicit active:false, or a missing
// taskId or startTime.
func decodeSession(data string) (models.FocusSession, bool) {
	var raw storedSession
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return models.FocusSession{}, false
	}
	s := models.FocusSession{
		Active:       raw.Active == nil || *raw.Active,
		TaskID:       raw.TaskID,
		StartTime:    raw.StartTime,
		BlockedSites: raw.BlockedSites,
	}
	if !s.Valid() {
		return models.FocusSession{}, false
	}
	if s.BlockedSites == nil {
		s.BlockedSites = []string{}
	}
	return s, true
}

// FormatElapsed renders d as HH:MM:SS. Hours are not wrapped at 24 and keep
// a two-digit minimum; negative durations render as zero.
func FormatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// elapsedSince computes the time between startMs and now.
func elapsedSince(startMs int64, now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(startMs))
}
