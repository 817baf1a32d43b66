package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/walletsession/infrastructure/logger"
	"github.com/kaspanet/walletsession/infrastructure/provider/ethprovider"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename = "walletsession.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "walletsession.log"
	defaultErrLogFilename = "walletsession_err.log"
	defaultLogLevel       = "info"
	defaultRPCServer      = "http://localhost:8545"
	defaultPollInterval   = ethprovider.DefaultPollInterval
	defaultConnectTimeout = 2 * time.Minute
)

var log, _ = logger.Get(logger.SubsystemTags.CNFG)

var (
	// DefaultHomeDir is the default home directory for walletsession.
	DefaultHomeDir = btcutil.AppDataDir("walletsession", false)

	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)
)

// Flags defines the configuration options for walletsession.
//
// See LoadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion    bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile     string        `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir         string        `long:"logdir" description:"Directory to log output."`
	DebugLevel     string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	RPCServer      string        `short:"s" long:"rpcserver" description:"Wallet JSON-RPC endpoint to connect to (http, https, ws or wss)"`
	Proxy          string        `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser      string        `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass      string        `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
	PollInterval   time.Duration `long:"pollinterval" description:"How often to check the wallet for account and network changes"`
	ConnectTimeout time.Duration `long:"connecttimeout" description:"Give up connecting after this long, 0 to wait forever"`
	NoConnect      bool          `long:"noconnect" description:"Do not request account access on start, only follow wallet notifications"`
}

// Config defines the configuration options for walletsession.
type Config struct {
	*Flags

	// ShowSubsystems is set when --debuglevel=show asked for the list of
	// logging subsystems. Nothing else is loaded in that case.
	ShowSubsystems bool
}

// LogFile returns the path of the main log file.
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the warnings and errors log file.
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}

// ProviderConfig returns the settings of the wallet provider connection.
func (cfg *Config) ProviderConfig() *ethprovider.Config {
	return &ethprovider.Config{
		RPCServer:    cfg.RPCServer,
		Proxy:        cfg.Proxy,
		ProxyUser:    cfg.ProxyUser,
		ProxyPass:    cfg.ProxyPass,
		PollInterval: cfg.PollInterval,
	}
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:     defaultConfigFile,
		LogDir:         defaultLogDir,
		DebugLevel:     defaultLogLevel,
		RPCServer:      defaultRPCServer,
		PollInterval:   defaultPollInterval,
		ConnectTimeout: defaultConnectTimeout,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// A missing config file is only an error when one was explicitly requested.
func LoadConfig(args []string) (*Config, error) {
	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := defaultFlags()
	preParser := flags.NewParser(preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, err
		}
		return nil, errors.Wrap(err, "error parsing command line")
	}

	cfg := &Config{Flags: defaultFlags()}
	if preCfg.ShowVersion {
		cfg.ShowVersion = true
		return cfg, nil
	}

	parser := flags.NewParser(cfg.Flags, flags.HelpFlag)
	configFileExplicit := preCfg.ConfigFile != defaultConfigFile
	configFileLoaded := true
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) || configFileExplicit {
			return nil, errors.Wrapf(err, "error parsing config file %s", preCfg.ConfigFile)
		}
		configFileLoaded = false
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing command line")
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		cfg.ShowSubsystems = true
		return cfg, nil
	}
	err = logger.ParseAndSetDebugLevels(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	if configFileLoaded {
		log.Debugf("Loaded configuration file %s", preCfg.ConfigFile)
	} else {
		log.Debugf("Configuration file %s not found, using defaults", preCfg.ConfigFile)
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	endpoint, err := url.Parse(cfg.RPCServer)
	if err != nil {
		return errors.Wrapf(err, "invalid --rpcserver %s", cfg.RPCServer)
	}
	switch endpoint.Scheme {
	case "http", "https":
	case "ws", "wss":
		if cfg.Proxy != "" {
			return errors.Errorf("--proxy can not be used with a %s endpoint", endpoint.Scheme)
		}
	default:
		return errors.Errorf("--rpcserver %s must be an http, https, ws or wss URL", cfg.RPCServer)
	}

	if cfg.PollInterval <= 0 {
		return errors.Errorf("--pollinterval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.ConnectTimeout < 0 {
		return errors.Errorf("--connecttimeout can not be negative, got %s", cfg.ConnectTimeout)
	}
	if (cfg.ProxyUser != "" || cfg.ProxyPass != "") && cfg.Proxy == "" {
		return errors.New("--proxyuser and --proxypass require --proxy")
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	return nil
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if len(path) > 0 && path[0] == '~' {
		homeDir := filepath.Dir(DefaultHomeDir)
		path = fmt.Sprintf("%s%s", homeDir, path[1:])
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// ConnectContext returns a context bounded by --connecttimeout, or an
// unbounded one when the timeout is 0.
func (cfg *Config) ConnectContext() (context.Context, context.CancelFunc) {
	if cfg.ConnectTimeout == 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), cfg.ConnectTimeout)
}
