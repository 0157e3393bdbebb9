package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	tests := map[string]struct {
		input string
		want  time.Duration
		label string
	}{
		"default": {
			input: "",
			want:  4 * week,
			label: "4w",
		},
		"composite": {
			input: "1w2d6h30m",
			want:  week + 2*day + 6*time.Hour + 30*time.Minute,
			label: "1w2d6h30m",
		},
		"words": {
			input: "3 days 12 hours",
			want:  3*day + 12*time.Hour,
			label: "3d12h",
		},
		"normalised": {
			input: "10d",
			want:  10 * day,
			label: "1w3d",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, label, err := ParseWindow(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if label != tc.label {
				t.Errorf("expected label %q, got %q", tc.label, label)
			}
		})
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, input := range []string{"noop", "3", "2y", "0d"} {
		if _, _, err := ParseWindow(input); !errors.Is(err, ErrWindow) {
			t.Errorf("%q: expected ErrWindow, got %v", input, err)
		}
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-26 * time.Hour), "1d ago"},
		{now.Add(-15 * day), "2w ago"},
	}
	for _, tc := range tests {
		if got := Ago(now, tc.at); got != tc.want {
			t.Errorf("Ago(%v) = %q, want %q", now.Sub(tc.at), got, tc.want)
		}
	}
}

func TestWithin(t *testing.T) {
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	if !Within(now, now.Add(-day), week) {
		t.Error("a day ago should be within a week")
	}
	if Within(now, now.Add(-2*week), week) {
		t.Error("two weeks ago should not be within a week")
	}
}
