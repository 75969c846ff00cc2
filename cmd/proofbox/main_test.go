package main

import (
	"reflect"
	"testing"
	"time"
)

func TestParseCompletion(t *testing.T) {
	tests := []struct {
		in         string
		wantRating *int
		wantIssues []string
		wantNotes  string
	}{
		{"", nil, nil, ""},
		{"5", intp(5), nil, ""},
		{"great crumb", nil, nil, "great crumb"},
		{"4 #dense-crumb", intp(4), []string{"dense crumb"}, ""},
		{"4 #dense-crumb #pale cut it too soon", intp(4), []string{"dense crumb", "pale"}, "cut it too soon"},
		{"#overproofed", nil, []string{"overproofed"}, ""},
		{"3 best one yet #gummy", intp(3), []string{"gummy"}, "best one yet"},
		{"#", nil, nil, "#"}, // a bare hash is not a tag
	}
	for _, tt := range tests {
		rating, issues, notes := parseCompletion(tt.in)
		if !reflect.DeepEqual(rating, tt.wantRating) {
			t.Errorf("parseCompletion(%q) rating = %v, want %v", tt.in, rating, tt.wantRating)
		}
		if !reflect.DeepEqual(issues, tt.wantIssues) {
			t.Errorf("parseCompletion(%q) issues = %v, want %v", tt.in, issues, tt.wantIssues)
		}
		if notes != tt.wantNotes {
			t.Errorf("parseCompletion(%q) notes = %q, want %q", tt.in, notes, tt.wantNotes)
		}
	}
}

func TestParseTargetTime(t *testing.T) {
	now := time.Date(2026, 7, 12, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"18:00", time.Date(2026, 7, 12, 18, 0, 0, 0, time.UTC), false},
		// Already past today: rolls to tomorrow.
		{"06:30", time.Date(2026, 7, 13, 6, 30, 0, 0, time.UTC), false},
		{"2026-07-14 09:00", time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC), false},
		{"+9h30m", now.Add(9*time.Hour + 30*time.Minute), false},
		{"", time.Time{}, true},
		{"soonish", time.Time{}, true},
		{"+banana", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseTargetTime(tt.in, now)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTargetTime(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTargetTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTargetTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func intp(v int) *int { return &v }
