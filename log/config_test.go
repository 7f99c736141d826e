package log

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		expected Level
	}{
		{"trace", LevelTrace, LevelTrace},
		{"debug", LevelDebug, LevelDebug},
		{"info", LevelInfo, LevelInfo},
		{"warn", LevelWarn, LevelWarn},
		{"error", LevelError, LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithLevel(tt.level)(config{})

			if result.level != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, result.level)
			}
		})
	}
}

func TestConfig_WithLevelVar_SharesThreshold(t *testing.T) {
	var v slog.LevelVar

	v.Set(slog.LevelWarn)

	c := WithLevelVar(&v)(config{})
	if c.level != LevelWarn {
		t.Errorf("expected level seeded from var, got %v", c.level)
	}

	c = WithLevel(LevelDebug)(c)
	if v.Level() != slog.LevelDebug {
		t.Errorf("expected WithLevel to update the var, got %v", v.Level())
	}

	if c.threshold().Level() != slog.LevelDebug {
		t.Errorf("expected threshold to follow var, got %v", c.threshold().Level())
	}
}

func TestConfig_WithCaller_SetsCaller(t *testing.T) {
	for _, enable := range []bool{true, false} {
		if got := WithCaller(enable)(config{}).caller; got != enable {
			t.Errorf("WithCaller(%v): got %v", enable, got)
		}
	}
}

func TestConfig_WithFormat_SetsFormat(t *testing.T) {
	for _, f := range []Format{FormatText, FormatJSON} {
		if got := WithFormat(f)(config{}).format; got != f {
			t.Errorf("WithFormat(%v): got %v", f, got)
		}
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", ts.Format(time.RFC3339)},
		{"rfc-3339-nano", ts.Format(time.RFC3339Nano)},
		{"kitchen", ts.Format(time.Kitchen)},
		{"ms", ts.Format(time.StampMilli)},
		{"2006/01/02", "2024/01/15"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := makeFormatTimeFunc(tt.layout)(ts); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("expected json")
	}

	if ParseFormat("text") != FormatText {
		t.Error("expected text")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected default format")
	}
}

func TestLevel_QuieterLouder(t *testing.T) {
	if LevelInfo.Quieter() != LevelWarn {
		t.Errorf("info quieter: got %v", LevelInfo.Quieter())
	}

	if LevelError.Quieter() != LevelError {
		t.Errorf("error quieter: got %v", LevelError.Quieter())
	}

	if LevelInfo.Louder() != LevelDebug {
		t.Errorf("info louder: got %v", LevelInfo.Louder())
	}

	if LevelDebug.Louder() != LevelTrace {
		t.Errorf("debug louder: got %v", LevelDebug.Louder())
	}

	if LevelTrace.Louder() != LevelTrace {
		t.Errorf("trace louder: got %v", LevelTrace.Louder())
	}

	// Unnamed levels snap to the neighbouring named level.
	if Level(1).Quieter() != LevelWarn {
		t.Errorf("info+1 quieter: got %v", Level(1).Quieter())
	}
}

func TestLevels_Names(t *testing.T) {
	var names []string
	for s := range Levels() {
		names = append(names, s)
	}

	if got := strings.Join(names, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("unexpected levels %q", got)
	}
}
