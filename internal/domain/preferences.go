package domain

import (
	"encoding/json"
	"time"
)

// RawPreferences is the stored per-user preference bag. Keys this service
// does not understand are carried through untouched on write-back.
type RawPreferences map[string]json.RawMessage

const (
	PrefAIConfig       = "ai_config"
	PrefSchedules      = "digest_schedules"
	PrefLegacySchedule = "digest_schedule"
	PrefPushConfig     = "digest_push_config"
	PrefTimezone       = "digest_timezone"
)

type AIConfig struct {
	APIURL       string `json:"apiUrl"`
	APIKey       string `json:"apiKey"`
	Model        string `json:"model"`
	TargetLang   string `json:"targetLang"`
	DigestPrompt string `json:"digestPrompt"`
}

type PushConfig struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	Body   string `json:"body"`
}

// ScheduledTask is one recurring digest configuration. Several tasks may
// target the same scope at different times.
type ScheduledTask struct {
	ID          string
	Scope       Scope
	Time        string // "HH:MM", 24h, in the user's digest timezone
	Enabled     bool
	Hours       int
	UnreadOnly  bool
	PushEnabled bool
}

// Preferences is the canonical in-memory view of RawPreferences.
type Preferences struct {
	AI        AIConfig
	Schedules []ScheduledTask
	Push      *PushConfig
	Timezone  string
}

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	// RunStatusSkipped marks a run whose feed or group no longer exists.
	RunStatusSkipped RunStatus = "skipped"
)

// TaskRun is the last known outcome of a scheduled task.
type TaskRun struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	TaskID         string    `db:"task_id"`
	LastRunAt      time.Time `db:"last_run_at"`
	LastStatus     RunStatus `db:"last_status"`
	LastError      string    `db:"last_error"`
	LastDigestID   string    `db:"last_digest_id"`
	LastPushStatus int       `db:"last_push_status"`
	TotalRuns      int64     `db:"total_runs"`
}
