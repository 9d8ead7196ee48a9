package slackbot

import "testing"

func TestNormalizeSubcommand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"analyze", "analyze"},
		{"  Analyze  ", "analyze"},
		{"analyze please", "analyze"},
		{"VALIDATE", "validate"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := normalizeSubcommand(tt.in); got != tt.want {
			t.Errorf("normalizeSubcommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
