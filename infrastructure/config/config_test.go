package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{})
	if err != nil {
		t.Fatalf("TestLoadConfigDefaults: %s", err)
	}
	if cfg.RPCServer != defaultRPCServer {
		t.Errorf("TestLoadConfigDefaults: got rpcserver %s, expected %s", cfg.RPCServer, defaultRPCServer)
	}
	if cfg.PollInterval != defaultPollInterval || cfg.ConnectTimeout != defaultConnectTimeout {
		t.Errorf("TestLoadConfigDefaults: got pollinterval %s and connecttimeout %s",
			cfg.PollInterval, cfg.ConnectTimeout)
	}
	if cfg.LogFile() != filepath.Join(defaultLogDir, defaultLogFilename) {
		t.Errorf("TestLoadConfigDefaults: unexpected log file %s", cfg.LogFile())
	}
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "walletsession.conf")
	content := "[Application Options]\n" +
		"rpcserver=https://wallet.example.org\n" +
		"pollinterval=5s\n" +
		"debuglevel=debug\n"
	err := os.WriteFile(configFile, []byte(content), 0600)
	if err != nil {
		t.Fatalf("TestLoadConfigFileAndOverrides: %s", err)
	}

	cfg, err := LoadConfig([]string{"--configfile", configFile, "--pollinterval", "750ms"})
	if err != nil {
		t.Fatalf("TestLoadConfigFileAndOverrides: %s", err)
	}
	if cfg.RPCServer != "https://wallet.example.org" {
		t.Errorf("TestLoadConfigFileAndOverrides: config file value ignored, got %s", cfg.RPCServer)
	}
	if cfg.PollInterval != 750*time.Millisecond {
		t.Errorf("TestLoadConfigFileAndOverrides: command line did not take precedence, got %s", cfg.PollInterval)
	}

	providerConfig := cfg.ProviderConfig()
	if providerConfig.RPCServer != cfg.RPCServer || providerConfig.PollInterval != cfg.PollInterval {
		t.Errorf("TestLoadConfigFileAndOverrides: provider config does not match: %+v", providerConfig)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig([]string{"--configfile", filepath.Join(t.TempDir(), "missing.conf")})
	if err == nil {
		t.Fatalf("TestLoadConfigMissingExplicitFile: expected an error")
	}
}

func TestLoadConfigHelp(t *testing.T) {
	_, err := LoadConfig([]string{"--help"})
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
		t.Fatalf("TestLoadConfigHelp: expected a help error, got %v", err)
	}
}

func TestLoadConfigShowSubsystems(t *testing.T) {
	cfg, err := LoadConfig([]string{"--debuglevel=show"})
	if err != nil {
		t.Fatalf("TestLoadConfigShowSubsystems: %s", err)
	}
	if !cfg.ShowSubsystems {
		t.Fatalf("TestLoadConfigShowSubsystems: ShowSubsystems is not set")
	}

	cfg, err = LoadConfig([]string{"--debuglevel=info"})
	if err != nil {
		t.Fatalf("TestLoadConfigShowSubsystems: %s", err)
	}
	if cfg.ShowSubsystems {
		t.Fatalf("TestLoadConfigShowSubsystems: ShowSubsystems set for a regular level")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedError string
	}{
		{
			name:          "unsupported scheme",
			args:          []string{"--rpcserver", "ftp://localhost"},
			expectedError: "must be an http, https, ws or wss URL",
		},
		{
			name:          "proxy with websocket",
			args:          []string{"--rpcserver", "ws://localhost:8546", "--proxy", "127.0.0.1:9050"},
			expectedError: "--proxy can not be used",
		},
		{
			name:          "zero poll interval",
			args:          []string{"--pollinterval", "0s"},
			expectedError: "--pollinterval must be positive",
		},
		{
			name:          "negative connect timeout",
			args:          []string{"--connecttimeout=-1s"},
			expectedError: "--connecttimeout can not be negative",
		},
		{
			name:          "proxy credentials without proxy",
			args:          []string{"--proxyuser", "alice"},
			expectedError: "require --proxy",
		},
		{
			name:          "invalid debug level",
			args:          []string{"--debuglevel", "loud"},
			expectedError: "is invalid",
		},
	}

	for _, test := range tests {
		_, err := LoadConfig(test.args)
		if err == nil || !strings.Contains(err.Error(), test.expectedError) {
			t.Errorf("TestLoadConfigValidation: %s: got %v, expected an error containing %q",
				test.name, err, test.expectedError)
		}
	}
}
