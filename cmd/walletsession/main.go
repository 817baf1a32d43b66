package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/walletsession/infrastructure/config"
	"github.com/kaspanet/walletsession/infrastructure/logger"
	"github.com/kaspanet/walletsession/util/panics"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const appVersion = "0.1.0"

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.ShowVersion {
		fmt.Println("walletsession version", appVersion)
		os.Exit(0)
	}
	if cfg.ShowSubsystems {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	err = logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing the logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.CloseLogRotators()
	defer panics.HandlePanic(log, "MAIN", nil)

	// On a terminal the session is shown as a single live line and the log
	// only goes to the log files.
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		logger.BackendLog.ReplaceStdout(io.Discard)
	}

	log.Infof("walletsession version %s, using %s", appVersion, cfg.RPCServer)

	app, err := newWalletApp(cfg, newRenderer(os.Stdout, interactive))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		panics.Exit(log, fmt.Sprintf("%+v", err))
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	err = app.start()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		app.stop()
		panics.Exit(log, fmt.Sprintf("%+v", err))
	}

	<-interrupt
	log.Infof("Received interrupt, shutting down")
	app.stop()
}
