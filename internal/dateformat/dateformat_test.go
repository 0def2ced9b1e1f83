package dateformat

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	evening := time.Date(2026, 10, 6, 19, 5, 9, 0, time.UTC)
	midnight := time.Date(2026, 1, 31, 0, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		t       time.Time
		pattern string
		locale  string
		want    string
	}{
		{"meetup pattern", evening, DefaultPattern, "en-US", "06 of October, 2026 - 07h05"},
		{"midnight is 12", midnight, DefaultPattern, "en-US", "31 of January, 2026 - 12h30"},
		{"portuguese month", evening, "dd 'de' MMMM", "pt-BR", "06 de outubro"},
		{"unknown locale falls back", evening, "MMMM", "xx-invalid", "October"},
		{"unsupported locale falls back", evening, "MMMM", "ja-JP", "October"},
		{"short fields", evening, "d/M/yy H:m:s", "en", "6/10/26 19:5:9"},
		{"abbreviations", evening, "EEE MMM", "en-US", "Tue Oct"},
		{"weekday", evening, "EEEE", "en-US", "Tuesday"},
		{"am pm", midnight, "h a", "en-US", "12 AM"},
		{"escaped quote", evening, "hh'h''s'", "en-US", "07h's"},
		{"bare quote pair", evening, "''yyyy", "en-US", "'2026"},
		{"unterminated literal", evening, "yyyy 'rest", "en-US", "2026 rest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.t, tt.pattern, tt.locale); got != tt.want {
				t.Errorf("Format(%q, %q) = %q, want %q", tt.pattern, tt.locale, got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	if !Supported("en-US") || !Supported("pt-BR") {
		t.Error("en-US and pt-BR should be supported")
	}
	if Supported("not a tag!") {
		t.Error("garbage should not be supported")
	}
}
