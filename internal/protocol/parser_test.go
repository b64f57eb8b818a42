package protocol

import (
	"bytes"
	"testing"

	"pressbot/internal/models"
)

func TestParse_Vocabulary(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    models.Command
	}{
		{"go", "go", models.CommandPress},
		{"reset", "reset", models.CommandReset},
		{"upper case rejected", "GO", models.CommandUnknown},
		{"mixed case rejected", "Reset", models.CommandUnknown},
		{"trailing newline rejected", "go\n", models.CommandUnknown},
		{"prefix rejected", "g", models.CommandUnknown},
		{"garbage", "xyz", models.CommandUnknown},
		{"empty", "", models.CommandUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse([]byte(tc.payload)); got != tc.want {
				t.Fatalf("Parse(%q) = %v, want %v", tc.payload, got, tc.want)
			}
		})
	}
}

func TestParse_LengthBound(t *testing.T) {
	p := NewParser(Options{TrimSpace: true, CaseInsensitive: true})
	for n := MaxCommandLen + 1; n <= ReadBufferSize; n += 97 {
		payload := append([]byte("go"), bytes.Repeat([]byte(" "), n-2)...)
		if got := p.Parse(payload); got != models.CommandUnknown {
			t.Fatalf("len=%d: got %v, want unknown", n, got)
		}
	}
	if got := p.Parse(nil); got != models.CommandUnknown {
		t.Fatalf("nil payload: got %v", got)
	}
}

func TestParser_Options(t *testing.T) {
	cases := []struct {
		name    string
		opts    Options
		payload string
		want    models.Command
	}{
		{"trim newline", Options{TrimSpace: true}, "go\r\n", models.CommandPress},
		{"trim keeps case", Options{TrimSpace: true}, " GO ", models.CommandUnknown},
		{"case insensitive", Options{CaseInsensitive: true}, "RESET", models.CommandReset},
		{"case insensitive keeps spaces", Options{CaseInsensitive: true}, "reset ", models.CommandUnknown},
		{"both", Options{TrimSpace: true, CaseInsensitive: true}, "\tGo\n", models.CommandPress},
		{"only whitespace", Options{TrimSpace: true}, "   ", models.CommandUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewParser(tc.opts).Parse([]byte(tc.payload)); got != tc.want {
				t.Fatalf("Parse(%q) = %v, want %v", tc.payload, got, tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	for _, cmd := range []models.Command{models.CommandPress, models.CommandReset} {
		b, ok := Encode(cmd)
		if !ok {
			t.Fatalf("Encode(%v) not ok", cmd)
		}
		if got := Parse(b); got != cmd {
			t.Fatalf("Parse(Encode(%v)) = %v", cmd, got)
		}
	}
	if _, ok := Encode(models.CommandUnknown); ok {
		t.Fatalf("Encode(unknown) should fail")
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(models.OutcomeExecuted) != StatusExecuted ||
		StatusFor(models.OutcomeRejected) != StatusRejected ||
		StatusFor(models.OutcomeTransportError) != StatusFailed {
		t.Fatalf("unexpected status mapping")
	}
}
