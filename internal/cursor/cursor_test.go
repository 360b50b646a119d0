package cursor

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2024-06-01T10:00:00Z", true, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-06-01T12:00:00+02:00", true, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-06-01 10:00:00.123456", true, time.Date(2024, 6, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2024-06-01 10:00:00", true, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
		{" 2024-06-01 ", true, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
		{"2024-13-45", false, time.Time{}},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 5, time.UTC)
	got, ok := Parse(Format(at))
	if !ok || !got.Equal(at) {
		t.Errorf("round trip: got %v %v", got, ok)
	}
}
