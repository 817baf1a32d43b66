package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseAndSetDebugLevels(t *testing.T) {
	tests := []struct {
		name          string
		debugLevel    string
		expectedError bool
		expectedLevel map[string]Level
	}{
		{
			name:          "single level for all subsystems",
			debugLevel:    "debug",
			expectedLevel: map[string]Level{SubsystemTags.WSES: LevelDebug, SubsystemTags.ETHP: LevelDebug},
		},
		{
			name:          "per subsystem levels",
			debugLevel:    "WSES=trace,ETHP=warn",
			expectedLevel: map[string]Level{SubsystemTags.WSES: LevelTrace, SubsystemTags.ETHP: LevelWarn},
		},
		{
			name:          "invalid level",
			debugLevel:    "verbose",
			expectedError: true,
		},
		{
			name:          "unknown subsystem",
			debugLevel:    "NOPE=info",
			expectedError: true,
		},
		{
			name:          "pair without equals sign",
			debugLevel:    "WSES=info,ETHP",
			expectedError: true,
		},
	}

	for _, test := range tests {
		SetLogLevels("info")
		err := ParseAndSetDebugLevels(test.debugLevel)
		if test.expectedError {
			if err == nil {
				t.Errorf("TestParseAndSetDebugLevels: %s: expected an error", test.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("TestParseAndSetDebugLevels: %s: unexpected error: %s", test.name, err)
			continue
		}
		for tag, expected := range test.expectedLevel {
			log, _ := Get(tag)
			if log.Level() != expected {
				t.Errorf("TestParseAndSetDebugLevels: %s: subsystem %s has level %s, expected %s",
					test.name, tag, log.Level(), expected)
			}
		}
	}
	SetLogLevels("info")
}

func TestBackendFiltersByLevel(t *testing.T) {
	backend := &Backend{}
	var all, errorsOnly bytes.Buffer
	backend.AddWriter(&all, LevelTrace)
	backend.AddWriter(&errorsOnly, LevelError)

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Tracef("dropped")
	log.Debugf("debug %d", 1)
	log.Errorf("error %d", 2)

	if strings.Contains(all.String(), "dropped") {
		t.Errorf("TestBackendFiltersByLevel: trace message written below the logger level")
	}
	if !strings.Contains(all.String(), "[DBG] TEST: debug 1") {
		t.Errorf("TestBackendFiltersByLevel: debug message missing, got %q", all.String())
	}
	if strings.Contains(errorsOnly.String(), "debug 1") {
		t.Errorf("TestBackendFiltersByLevel: debug message reached the error writer")
	}
	if !strings.Contains(errorsOnly.String(), "[ERR] TEST: error 2") {
		t.Errorf("TestBackendFiltersByLevel: error message missing, got %q", errorsOnly.String())
	}
}
