package models

import "testing"

func TestValidClassName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"5А", true},
		{"10Б", true},
		{"5А-1", true},
		{"7", true},
		{"5a", true},
		{"", false},
		{"А5", false},   // не с цифры
		{"5 А", false},  // пробел
		{"5А-1-2", false}, // два дефиса
		{"-5А", false},
		{"5А!", false},
	}
	for _, tt := range tests {
		if got := ValidClassName(tt.name); got != tt.want {
			t.Errorf("ValidClassName(%q) = %v, ожидали %v", tt.name, got, tt.want)
		}
	}
}
