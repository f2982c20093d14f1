package database

import (
	"strings"
	"testing"
)

func TestGenerateUsernameBase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple name", "Jane Doe", "janedoe"},
		{"strips punctuation", "O'Brien-Smith", "obriensmith"},
		{"keeps digits", "Agent 47", "agent47"},
		{"truncates long names", "Bartholomew Featherstonehaugh", "bartholomewf"},
		{"empty falls back", "???", "learner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generateUsernameBase(tt.in); got != tt.want {
				t.Errorf("generateUsernameBase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateUsernameFormat(t *testing.T) {
	username := GenerateUsername("Jane Doe")
	if !strings.HasPrefix(username, "janedoe") {
		t.Errorf("username %q does not start with the name base", username)
	}
	suffix := strings.TrimPrefix(username, "janedoe")
	if len(suffix) != 4 {
		t.Errorf("username %q suffix is %d digits, want 4", username, len(suffix))
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			t.Errorf("username %q suffix contains non-digit %q", username, c)
		}
	}
}
