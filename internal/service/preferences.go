package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"feed_digest/internal/digest"
	"feed_digest/internal/domain"
)

// LegacyTaskID is the id given to a schedule migrated from the old
// single-object preference.
const LegacyTaskID = "default"

// MigrateLegacySchedule rewrites the legacy single-object schedule into a
// one-element schedule list and gives every listed task an id. It reports
// whether raw changed; running it again on its own output is a no-op.
// When both shapes are present the list wins.
func MigrateLegacySchedule(raw domain.RawPreferences) (bool, error) {
	changed := false

	if legacy, ok := raw[domain.PrefLegacySchedule]; ok {
		delete(raw, domain.PrefLegacySchedule)
		changed = true

		if _, hasList := raw[domain.PrefSchedules]; !hasList && !isNull(legacy) {
			var task map[string]json.RawMessage
			if err := json.Unmarshal(legacy, &task); err != nil {
				return false, fmt.Errorf("decode legacy schedule: %w", err)
			}
			if stringField(task, "id") == "" {
				task["id"] = mustMarshal(LegacyTaskID)
			}

			list, err := json.Marshal([]map[string]json.RawMessage{task})
			if err != nil {
				return false, fmt.Errorf("encode schedules: %w", err)
			}
			raw[domain.PrefSchedules] = list
		}
	}

	assigned, err := editTasks(raw, func(task map[string]json.RawMessage) bool {
		if stringField(task, "id") != "" {
			return false
		}
		task["id"] = mustMarshal(uuid.NewString())
		return true
	})
	if err != nil {
		return false, err
	}

	return changed || assigned, nil
}

// DisableTask switches off the task with the given id. It reports whether
// such a task existed.
func DisableTask(raw domain.RawPreferences, taskID string) (bool, error) {
	found := false
	_, err := editTasks(raw, func(task map[string]json.RawMessage) bool {
		if stringField(task, "id") != taskID {
			return false
		}
		found = true
		task["enabled"] = mustMarshal(false)
		return true
	})
	return found, err
}

// editTasks applies fn to every stored task, keeping fields it does not
// know about, and writes the list back if fn changed anything.
func editTasks(raw domain.RawPreferences, fn func(task map[string]json.RawMessage) bool) (bool, error) {
	data, ok := raw[domain.PrefSchedules]
	if !ok || isNull(data) {
		return false, nil
	}

	var tasks []map[string]json.RawMessage
	if err := json.Unmarshal(data, &tasks); err != nil {
		return false, fmt.Errorf("decode schedules: %w", err)
	}

	changed := false
	for _, task := range tasks {
		if task == nil {
			continue
		}
		if fn(task) {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}

	list, err := json.Marshal(tasks)
	if err != nil {
		return false, fmt.Errorf("encode schedules: %w", err)
	}
	raw[domain.PrefSchedules] = list
	return true, nil
}

// DecodePreferences builds the canonical view of a migrated preference
// bag. Legacy aliases are resolved here and nowhere else.
func DecodePreferences(raw domain.RawPreferences) (domain.Preferences, error) {
	var prefs domain.Preferences

	if data, ok := raw[domain.PrefAIConfig]; ok && !isNull(data) {
		if err := json.Unmarshal(data, &prefs.AI); err != nil {
			return prefs, fmt.Errorf("decode ai config: %w", err)
		}
	}

	if data, ok := raw[domain.PrefPushConfig]; ok && !isNull(data) {
		var push domain.PushConfig
		if err := json.Unmarshal(data, &push); err != nil {
			return prefs, fmt.Errorf("decode push config: %w", err)
		}
		prefs.Push = &push
	}

	if data, ok := raw[domain.PrefTimezone]; ok && !isNull(data) {
		if err := json.Unmarshal(data, &prefs.Timezone); err != nil {
			return prefs, fmt.Errorf("decode timezone: %w", err)
		}
	}

	if data, ok := raw[domain.PrefSchedules]; ok && !isNull(data) {
		var records []taskRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return prefs, fmt.Errorf("decode schedules: %w", err)
		}
		for _, rec := range records {
			if task, ok := rec.task(); ok {
				prefs.Schedules = append(prefs.Schedules, task)
			}
		}
	}

	return prefs, nil
}

// taskRecord is the stored task shape, aliases included.
type taskRecord struct {
	ID          flexString `json:"id"`
	Scope       flexString `json:"scope"`
	ScopeID     flexInt    `json:"scopeId"`
	FeedID      flexInt    `json:"feedId"`
	GroupID     flexInt    `json:"groupId"`
	Time        flexString `json:"time"`
	Enabled     *bool      `json:"enabled"`
	Hours       flexInt    `json:"hours"`
	UnreadOnly  *bool      `json:"unreadOnly"`
	PushEnabled *bool      `json:"pushEnabled"`
}

// task converts a record, dropping feed or group tasks without a target.
func (r taskRecord) task() (domain.ScheduledTask, bool) {
	task := domain.ScheduledTask{
		ID:          string(r.ID),
		Time:        normalizeTime(string(r.Time)),
		Enabled:     boolOr(r.Enabled, false),
		Hours:       digest.DefaultHours,
		UnreadOnly:  boolOr(r.UnreadOnly, true),
		PushEnabled: boolOr(r.PushEnabled, false),
	}
	if r.Hours.set && r.Hours.v > 0 {
		task.Hours = int(r.Hours.v)
	}

	kind := domain.ScopeKind(strings.ToLower(strings.TrimSpace(string(r.Scope))))
	if kind == "" {
		switch {
		case r.FeedID.set:
			kind = domain.ScopeFeed
		case r.GroupID.set:
			kind = domain.ScopeGroup
		default:
			kind = domain.ScopeAll
		}
	}

	switch kind {
	case domain.ScopeFeed:
		id, ok := firstSet(r.ScopeID, r.FeedID)
		if !ok {
			return task, false
		}
		task.Scope = domain.FeedScope(id)
	case domain.ScopeGroup:
		id, ok := firstSet(r.ScopeID, r.GroupID)
		if !ok {
			return task, false
		}
		task.Scope = domain.GroupScope(id)
	case domain.ScopeAll:
		task.Scope = domain.AllScope()
	default:
		return task, false
	}

	return task, true
}

// flexInt accepts a JSON number or a numeric string. Anything else,
// null included, leaves it unset.
type flexInt struct {
	v   int64
	set bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.v, f.set = v, true
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.v, f.set = int64(v), true
	}
	return nil
}

// flexString accepts a JSON string or a bare scalar such as a numeric id.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	if isNull(data) {
		*f = ""
		return nil
	}
	*f = flexString(strings.TrimSpace(string(data)))
	return nil
}

func firstSet(values ...flexInt) (int64, bool) {
	for _, v := range values {
		if v.set {
			return v.v, true
		}
	}
	return 0, false
}

// normalizeTime turns "8:00" into "08:00". Unparseable values are kept
// as given and so never match a tick.
func normalizeTime(s string) string {
	s = strings.TrimSpace(s)
	t, err := time.Parse("15:04", s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func stringField(m map[string]json.RawMessage, key string) string {
	data, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	// Numeric ids from older clients.
	return strings.TrimSpace(string(data))
}

func isNull(data json.RawMessage) bool {
	return len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
