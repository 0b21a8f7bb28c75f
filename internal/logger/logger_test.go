package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"trace":   SeverityTrace,
		"DEBUG":   SeverityDebug,
		"Info":    SeverityInfo,
		"warning": SeverityWarning,
		"ERROR":   SeverityError,
		"off":     SeverityOff,
		"bogus":   SeverityInfo,
		"":        SeverityInfo,
	}
	for input, want := range cases {
		require.Equal(t, want, ParseSeverity(input), "input=%q", input)
	}
}

func TestInitDoesNotPanicWithFileOutput(t *testing.T) {
	dir := t.TempDir()
	require.NotPanics(t, func() {
		Init(Config{Severity: SeverityDebug, JSON: true, FilePath: dir + "/log.txt"})
		Infof("hello %s", "world")
		Errorf("boom")
	})
}
