package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bitfsorg/misfit-go/config"
	"github.com/bitfsorg/misfit-go/fixture"
	"github.com/bitfsorg/misfit-go/metrics"
	"github.com/bitfsorg/misfit-go/rng"
)

// app carries the state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfg     config.Config
	seed    [rng.SeedSize]byte
	src     rng.Source
	metrics *metrics.Metrics
	save    bool
	logFile io.Closer
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), metrics: metrics.New()}

	root := &cobra.Command{
		Use:           "misfit",
		Short:         "Synthesize and break Bitcoin transactions and blocks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				// Raw-argument commands call init after extracting globals.
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default <data-dir>/config.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("data-dir", "", "directory holding the config and fixture store")
	pf.String("seed", "", "64 hex characters; makes the run reproducible")
	pf.String("network", "", "network: regtest, testnet, mainnet")
	pf.Int("workers", 0, "parallel workers for bulk generation")
	pf.Bool("save", false, "persist generated and broken fixtures")

	bind := map[string]string{
		"log_level": "log-level",
		"data_dir":  "data-dir",
		"seed":      "seed",
		"network":   "network",
		"workers":   "workers",
	}
	for key, flag := range bind {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	root.AddCommand(
		newTxCmd(a),
		newBlockCmd(a),
		newDecodeCmd(a),
		newRegtestCmd(a),
		newFixtureCmd(a),
	)
	return root
}

// init loads configuration, installs the logger, and prepares the
// randomness source.
func (a *app) init(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	path, _ := flags.GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.ConfigPath(a.v.GetString("data_dir"))
	}
	if err := config.ReadFile(a.v, path); err != nil {
		if explicit || !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	a.save, _ = flags.GetBool("save")

	if err := a.setupLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}

	seed, err := rng.ResolveSeed(cfg.Seed)
	if err != nil {
		return err
	}
	a.seed = seed
	a.src = rng.NewSeeded(seed)
	slog.Debug("randomness source ready", "seed", hex.EncodeToString(seed[:]))
	return nil
}

// setupLogging installs a text slog handler at the configured level,
// writing to LogFile when set.
func (a *app) setupLogging(stderr io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidLogLevel, err)
	}

	w := stderr
	if a.cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0700); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// finish pushes metrics when a Pushgateway is configured and releases the
// log file.
func (a *app) finish(ctx context.Context) error {
	defer func() {
		if a.logFile != nil {
			_ = a.logFile.Close()
			a.logFile = nil
		}
	}()
	if a.cfg.Metrics.PushURL == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.metrics.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job); err != nil {
		slog.Warn("metrics push failed", "error", err)
	}
	return nil
}

// initRaw handles commands with flag parsing disabled: arguments naming a
// persistent flag are parsed as such and the rest are returned untouched.
func (a *app) initRaw(cmd *cobra.Command, args []string) ([]string, error) {
	globals, rest := splitGlobalArgs(cmd.Root().PersistentFlags(), args)
	if err := cmd.Root().PersistentFlags().Parse(globals); err != nil {
		return nil, err
	}
	if err := a.init(cmd); err != nil {
		return nil, err
	}
	return rest, nil
}

// splitGlobalArgs separates arguments that belong to fs from the rest. A
// non-boolean flag given without "=" consumes the following argument.
func splitGlobalArgs(fs *pflag.FlagSet, args []string) (globals, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			rest = append(rest, arg)
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		f := fs.Lookup(name)
		if f == nil {
			rest = append(rest, arg)
			continue
		}
		globals = append(globals, arg)
		if !hasValue && f.Value.Type() != "bool" && i+1 < len(args) {
			i++
			globals = append(globals, args[i])
		}
	}
	return globals, rest
}

// withStore opens the fixture store for the duration of fn.
func (a *app) withStore(fn func(fixture.Store) error) error {
	store, err := fixture.OpenBoltStore(filepath.Join(a.cfg.DataDir, fixture.DefaultFileName))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}

// persist stores records when --save is set. Duplicates are reported and
// skipped.
func (a *app) persist(records ...*fixture.Record) error {
	if !a.save || len(records) == 0 {
		return nil
	}
	return a.withStore(func(s fixture.Store) error {
		for _, r := range records {
			err := s.Put(r)
			switch {
			case errors.Is(err, fixture.ErrDuplicate):
				slog.Warn("fixture already stored", "kind", r.Kind, "id", r.ID)
			case err != nil:
				return err
			default:
				slog.Debug("fixture stored", "kind", r.Kind, "id", r.ID)
			}
		}
		return nil
	})
}
