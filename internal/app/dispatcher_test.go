package app

import "testing"

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in  string
		cmd string
		arg string
	}{
		{"/viewnews", "/viewnews", ""},
		{"/viewnews 5А", "/viewnews", "5А"},
		{"/viewnews   5А-1", "/viewnews", "5А-1"},
		{"/ViewNews 5А", "/viewnews", "5А"},
		{"/viewnews@classbot 5А", "/viewnews", "5А"},
		{"/viewreports 10Б", "/viewreports", "10Б"},
		{"/help", "/help", ""},
		{"", "", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		cmd, arg := splitCommand(tt.in)
		if cmd != tt.cmd || arg != tt.arg {
			t.Errorf("splitCommand(%q) = (%q, %q), ожидали (%q, %q)", tt.in, cmd, arg, tt.cmd, tt.arg)
		}
	}
}
