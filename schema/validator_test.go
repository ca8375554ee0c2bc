package settingsschema

import (
	"testing"
)

func TestValidateSettingsPayloadAccepts(t *testing.T) {
	t.Parallel()

	docs := []struct {
		name string
		doc  string
	}{
		{"empty object", `{}`},
		{"full policy", `{
			"reliability_floor": "High",
			"source_weights": {"chronicle.example": "boost", "tabloid.example": "hide"},
			"paywall_mode": "downrank",
			"region_weights": {"US": 1.2, "EU": 0.8},
			"topic_boosts": ["climate"],
			"keyword_mutes": ["celebrity"],
			"stories_per_day": 10,
			"top_count": 3,
			"scan_count": 4
		}`},
		{"counts at the limit", `{"stories_per_day": 6, "top_count": 3, "scan_count": 3}`},
	}
	for _, tc := range docs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateSettingsPayload([]byte(tc.doc)); err != nil {
				t.Fatalf("expected valid payload: %v", err)
			}
		})
	}
}

func TestValidateSettingsPayloadRejects(t *testing.T) {
	t.Parallel()

	docs := []struct {
		name string
		doc  string
	}{
		{"empty payload", ``},
		{"trailing content", `{} {}`},
		{"unknown property", `{"stories_per_week": 5}`},
		{"floor outside enum", `{"reliability_floor": "Medium"}`},
		{"weight outside enum", `{"source_weights": {"x.example": "favorite"}}`},
		{"negative region weight", `{"region_weights": {"US": -1}}`},
		{"empty mute keyword", `{"keyword_mutes": [""]}`},
		{"zero stories", `{"stories_per_day": 0}`},
		{"fractional count", `{"top_count": 1.5}`},
		{"counts exceed total", `{"stories_per_day": 5, "top_count": 3, "scan_count": 3}`},
		{"empty weight domain", `{"source_weights": {"": "boost"}}`},
	}
	for _, tc := range docs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateSettingsPayload([]byte(tc.doc)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
