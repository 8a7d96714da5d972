package contract

import (
	"reflect"
	"testing"

	"github.com/Messano/brain-hr-hub/internal/models"
)

func TestDiffExactChangedKeys(t *testing.T) {
	prev := map[string]any{
		"status":      "actif",
		"hourly_rate": 25.5,
		"position":    "cariste",
		"type":        "interim",
	}
	curr := map[string]any{
		"status":      "suspendu",
		"hourly_rate": 27.0,
		"position":    "cariste",
		"type":        "interim",
	}

	got := Diff(prev, curr)

	want := map[string]models.FieldChange{
		"status":      {Old: "actif", New: "suspendu"},
		"hourly_rate": {Old: 25.5, New: 27.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff = %#v, want %#v", got, want)
	}
}

func TestDiffFieldPresentOnOneSideOnly(t *testing.T) {
	prev := map[string]any{"end_date": "2025-12-31"}
	curr := map[string]any{"position": "soudeur"}

	got := Diff(prev, curr)

	if c, ok := got["end_date"]; !ok || c.Old != "2025-12-31" || c.New != nil {
		t.Errorf("removed field: got %#v", got["end_date"])
	}
	if c, ok := got["position"]; !ok || c.Old != nil || c.New != "soudeur" {
		t.Errorf("added field: got %#v", got["position"])
	}
}

func TestDiffIdenticalSnapshotsIsNil(t *testing.T) {
	snap := map[string]any{"status": "actif", "hourly_rate": 25.5}
	if got := Diff(snap, map[string]any{"status": "actif", "hourly_rate": 25.5}); got != nil {
		t.Errorf("expected nil diff, got %#v", got)
	}
}

func TestDiffShallowComparisonOnly(t *testing.T) {
	// Values of different types, and non-comparable values, differ.
	prev := map[string]any{"rate": 25, "tags": []string{"a"}}
	curr := map[string]any{"rate": 25.0, "tags": []string{"a"}}

	got := Diff(prev, curr)
	if _, ok := got["rate"]; !ok {
		t.Error("int vs float64 must be reported as changed")
	}
	if _, ok := got["tags"]; !ok {
		t.Error("non-comparable values must be reported as changed")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{"cariste", "cariste"},
		{true, "Oui"},
		{false, "Non"},
		{27.5, "27.5"},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatValueDoesNotMutateDiff(t *testing.T) {
	diff := map[string]models.FieldChange{"status": {Old: "actif", New: nil}}
	_ = FormatValue(diff["status"].Old)
	_ = FormatValue(diff["status"].New)
	if diff["status"].Old != "actif" || diff["status"].New != nil {
		t.Errorf("diff mutated: %#v", diff)
	}
}
