package service

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed_digest/internal/domain"
)

func rawPrefs(t *testing.T, doc string) domain.RawPreferences {
	t.Helper()
	var raw domain.RawPreferences
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))
	return raw
}

func schedules(t *testing.T, raw domain.RawPreferences) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw[domain.PrefSchedules], &out))
	return out
}

func TestMigrateLegacySchedule(t *testing.T) {
	raw := rawPrefs(t, `{
		"theme": "dark",
		"digest_schedule": {"scope": "feed", "feedId": 12, "time": "07:30", "enabled": true, "hours": 6, "custom": "kept"}
	}`)

	changed, err := MigrateLegacySchedule(raw)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, raw, domain.PrefLegacySchedule)
	assert.JSONEq(t, `"dark"`, string(raw["theme"]))

	tasks := schedules(t, raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, map[string]any{
		"id":      "default",
		"scope":   "feed",
		"feedId":  float64(12),
		"time":    "07:30",
		"enabled": true,
		"hours":   float64(6),
		"custom":  "kept",
	}, tasks[0])

	before := string(raw[domain.PrefSchedules])
	changed, err = MigrateLegacySchedule(raw)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, string(raw[domain.PrefSchedules]))
}

func TestMigrateLegacySchedule_ListWins(t *testing.T) {
	raw := rawPrefs(t, `{
		"digest_schedule": {"scope": "all", "time": "09:00"},
		"digest_schedules": [{"id": "a", "scope": "all", "time": "10:00"}]
	}`)

	changed, err := MigrateLegacySchedule(raw)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotContains(t, raw, domain.PrefLegacySchedule)
	tasks := schedules(t, raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0]["id"])
	assert.Equal(t, "10:00", tasks[0]["time"])
}

func TestMigrateLegacySchedule_AssignsMissingIDs(t *testing.T) {
	raw := rawPrefs(t, `{"digest_schedules": [{"id": "keep", "time": "08:00"}, {"time": "20:00"}, {"id": "", "time": "21:00"}]}`)

	changed, err := MigrateLegacySchedule(raw)

	require.NoError(t, err)
	assert.True(t, changed)
	tasks := schedules(t, raw)
	require.Len(t, tasks, 3)
	assert.Equal(t, "keep", tasks[0]["id"])
	for _, task := range tasks[1:] {
		_, err := uuid.Parse(task["id"].(string))
		assert.NoError(t, err)
	}
	assert.NotEqual(t, tasks[1]["id"], tasks[2]["id"])
}

func TestMigrateLegacySchedule_Nothing(t *testing.T) {
	raw := rawPrefs(t, `{"ai_config": {"apiKey": "k"}}`)

	changed, err := MigrateLegacySchedule(raw)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.NotContains(t, raw, domain.PrefSchedules)
}

func TestMigrateLegacySchedule_Malformed(t *testing.T) {
	_, err := MigrateLegacySchedule(rawPrefs(t, `{"digest_schedule": "08:00"}`))
	assert.Error(t, err)

	_, err = MigrateLegacySchedule(rawPrefs(t, `{"digest_schedules": {"time": "08:00"}}`))
	assert.Error(t, err)
}

func TestDecodePreferences(t *testing.T) {
	raw := rawPrefs(t, `{
		"ai_config": {"apiUrl": "https://llm.example.com/v1", "apiKey": "sk", "model": "m", "targetLang": "English", "digestPrompt": "p"},
		"digest_push_config": {"url": "https://hooks.example.com", "method": "POST", "body": ""},
		"digest_timezone": "Europe/Berlin",
		"digest_schedules": [
			{"id": "all", "scope": "all", "time": "8:05", "enabled": true},
			{"id": "feed", "scope": "feed", "feedId": "42", "time": "12:00", "hours": 6, "unreadOnly": false, "pushEnabled": true},
			{"id": "group", "scope": "group", "scopeId": 3, "groupId": 9, "time": "18:00", "enabled": true},
			{"id": 77, "groupId": 5, "time": "19:00"},
			{"id": "broken", "scope": "feed", "time": "07:00"},
			{"id": "weird", "scope": "planet", "time": "07:00"}
		]
	}`)

	prefs, err := DecodePreferences(raw)

	require.NoError(t, err)
	assert.Equal(t, domain.AIConfig{
		APIURL:       "https://llm.example.com/v1",
		APIKey:       "sk",
		Model:        "m",
		TargetLang:   "English",
		DigestPrompt: "p",
	}, prefs.AI)
	assert.Equal(t, &domain.PushConfig{URL: "https://hooks.example.com", Method: "POST"}, prefs.Push)
	assert.Equal(t, "Europe/Berlin", prefs.Timezone)
	assert.Equal(t, []domain.ScheduledTask{
		{ID: "all", Scope: domain.AllScope(), Time: "08:05", Enabled: true, Hours: 24, UnreadOnly: true},
		{ID: "feed", Scope: domain.FeedScope(42), Time: "12:00", Hours: 6, PushEnabled: true},
		{ID: "group", Scope: domain.GroupScope(3), Time: "18:00", Enabled: true, Hours: 24, UnreadOnly: true},
		{ID: "77", Scope: domain.GroupScope(5), Time: "19:00", Hours: 24, UnreadOnly: true},
	}, prefs.Schedules)
}

func TestDecodePreferences_Empty(t *testing.T) {
	prefs, err := DecodePreferences(domain.RawPreferences{})

	require.NoError(t, err)
	assert.Empty(t, prefs.Schedules)
	assert.Nil(t, prefs.Push)
	assert.Empty(t, prefs.AI.APIKey)
}

func TestDecodePreferences_MalformedAIConfig(t *testing.T) {
	_, err := DecodePreferences(rawPrefs(t, `{"ai_config": "nope"}`))
	assert.Error(t, err)
}

func TestDisableTask(t *testing.T) {
	raw := rawPrefs(t, `{"digest_schedules": [{"id": "a", "enabled": true, "note": "x"}, {"id": "b", "enabled": true}]}`)

	found, err := DisableTask(raw, "b")

	require.NoError(t, err)
	assert.True(t, found)
	tasks := schedules(t, raw)
	assert.Equal(t, true, tasks[0]["enabled"])
	assert.Equal(t, "x", tasks[0]["note"])
	assert.Equal(t, false, tasks[1]["enabled"])

	found, err = DisableTask(raw, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}
