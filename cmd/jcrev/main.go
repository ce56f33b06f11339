// Command jcrev runs the integer JCRev reverberator offline and live.
//
// Usage:
//
//	jcrev <command> [flags]
//
// Commands:
//
//	render  apply the reverb to a WAV file
//	delay   render the single-echo reference for comparison
//	ir      render and analyse the impulse response
//	play    play a WAV file
//	live    run the reverb between the default microphone and speakers
//
// Settings default to the device configuration and can be overridden with
// JCREV_* environment variables (optionally from a .env file) and then with
// flags.
//
// Examples:
//
//	jcrev render -in voice.wav -out voice_rev.wav
//	jcrev render -in voice.wav -out hall.wav -preset jcrev -tail 1s -play
//	jcrev delay -in voice.wav -out voice_echo.wav
//	jcrev ir -n 30000
//	jcrev live -duration 30s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cwbudde/algo-jcrev/internal/config"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, app *app, args []string) error
}

var commands = []command{
	{"render", "apply the reverb to a WAV file", runRender},
	{"delay", "render the single-echo reference", runDelay},
	{"ir", "render and analyse the impulse response", runIR},
	{"play", "play a WAV file", runPlay},
	{"live", "run the reverb on the sound card", runLive},
}

// app carries what every subcommand needs.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	level  *slog.LevelVar
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "-help" || args[0] == "help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "error: unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel)

	a := &app{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		level:  level,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if errors.Is(err, errUsage) {
			return 2
		}
		a.logger.Error(cmd.name+" failed", slog.Any("err", err))
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: jcrev <command> [flags]\n\n")
	fmt.Fprintf(w, "Integer Schroeder (JCRev) reverberator for 16-bit mono PCM.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-7s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'jcrev <command> -h' for command flags.\n")
	fmt.Fprintf(w, "\nEnvironment (also read from .env):\n")
	for _, k := range []string{
		config.EnvSampleRate, config.EnvBlockSize, config.EnvDelay,
		config.EnvPreset, config.EnvDryComb0, config.EnvLogLevel,
	} {
		fmt.Fprintf(w, "  %s\n", k)
	}
}

var errUsage = errors.New("usage error")

// newFlagSet returns a flag set with the -v flag shared by all commands.
func (a *app) newFlagSet(name, synopsis string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: jcrev %s %s\n\nFlags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs, verbose
}

// engineFlags binds the reverb settings to fs with the resolved config as
// defaults, so flags take precedence over the environment.
func (a *app) engineFlags(fs *flag.FlagSet) {
	fs.IntVar(&a.cfg.Delay, "delay", a.cfg.Delay, "comb0 delay in samples")
	fs.StringVar(&a.cfg.Preset, "preset", a.cfg.Preset, "coefficients: production or jcrev")
	fs.BoolVar(&a.cfg.DryComb0, "dry-comb0", a.cfg.DryComb0, "feed comb0 with the dry input like the device firmware")
	fs.IntVar(&a.cfg.BlockSize, "block", a.cfg.BlockSize, "DMA block size in samples (two callbacks per block)")
}

func (a *app) parse(fs *flag.FlagSet, verbose *bool, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if *verbose {
		a.level.Set(slog.LevelDebug)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(a.stderr, "error: unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return errUsage
	}
	return nil
}

func (a *app) required(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		fmt.Fprintf(a.stderr, "error: -%s is required\n", name)
		fs.Usage()
		return errUsage
	}
	return nil
}
