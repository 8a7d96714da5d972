package planning

import (
	"errors"
	"testing"
	"time"

	"github.com/Messano/brain-hr-hub/internal/models"
)

func TestEventRequestValidate(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	cases := []struct {
		name    string
		req     EventRequest
		wantErr bool
	}{
		{"valid meeting", EventRequest{Title: "Point hebdo", Type: models.EventMeeting, StartsAt: start, EndsAt: end}, false},
		{"missing title", EventRequest{Title: "  ", Type: models.EventMeeting, StartsAt: start, EndsAt: end}, true},
		{"unknown type", EventRequest{Title: "X", Type: "fete", StartsAt: start, EndsAt: end}, true},
		{"zero start", EventRequest{Title: "X", Type: models.EventOther, EndsAt: end}, true},
		{"ends before starts", EventRequest{Title: "X", Type: models.EventOther, StartsAt: end, EndsAt: start}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
