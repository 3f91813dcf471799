// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/parley/lib/config"
	"github.com/bureau-foundation/parley/lib/ref"
	"github.com/bureau-foundation/parley/lib/sessionstore"
	"github.com/bureau-foundation/parley/lib/syncengine"
	"github.com/bureau-foundation/parley/lib/version"
	"github.com/bureau-foundation/parley/messaging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	configPath string
	stateDir   string
	homeserver string
	userID     string
	token      string
	room       string
	message    string
	once       bool
	list       bool
	noColor    bool
	verbose    bool
	version    bool
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("parley-sync", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to parley.yaml (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&opts.stateDir, "state-dir", "", "directory holding the session record and snapshot (overrides state_dir)")
	flagSet.StringVar(&opts.homeserver, "homeserver", "", "homeserver as host[:port] or URL (default: the record's, then the user ID's server)")
	flagSet.StringVar(&opts.userID, "user-id", "", "Matrix user ID to log in as, replacing the stored session")
	flagSet.StringVar(&opts.token, "token", "", "access token for --user-id")
	flagSet.StringVar(&opts.room, "room", "", "room ID to send --message to after connecting")
	flagSet.StringVar(&opts.message, "message", "", "plain-text message to send to --room")
	flagSet.BoolVar(&opts.once, "once", false, "stop after the first sync instead of following")
	flagSet.BoolVar(&opts.list, "list", false, "print the joined rooms after the first sync")
	flagSet.BoolVar(&opts.noColor, "no-color", false, "disable colors in --list output")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if flagSet.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	if (opts.userID == "") != (opts.token == "") {
		return options{}, fmt.Errorf("--user-id and --token must be given together")
	}
	if (opts.room == "") != (opts.message == "") {
		return options{}, fmt.Errorf("--room and --message must be given together")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "parley-sync %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.stateDir != "" {
		cfg.StateDir = opts.stateDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := cfg.LogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(stderr, cfg.Log.Format, level)

	if err := cfg.EnsureStateDir(); err != nil {
		return err
	}
	identity, err := loadOrCreateIdentity(cfg.IdentityFile, logger)
	if err != nil {
		return err
	}
	if identity != nil {
		defer identity.Close()
	}
	compression, _ := sessionstore.ParseCompression(cfg.Snapshot.Compression)
	store := sessionstore.New(cfg.StateDir, sessionstore.Options{
		Identity:    identity,
		Compression: compression,
	})

	record, err := store.LoadRecord()
	if err != nil {
		return err
	}
	credentials, err := resolveCredentials(record, opts, cfg.Homeserver)
	if errors.Is(err, syncengine.ErrCredentialsRequired) {
		return fmt.Errorf("no stored session in %s: log in with --user-id and --token", store.Dir())
	}
	if err != nil {
		return err
	}

	interval, _ := cfg.SyncInterval()
	filter, err := cfg.SyncFilter()
	if err != nil {
		return err
	}
	persister := &persister{store: store, snapshots: cfg.Snapshot.Enabled, logger: logger}

	manager := syncengine.NewManager(syncengine.ManagerConfig{
		Logger:         logger,
		UseMemberNames: cfg.Sync.UseMemberNames,
		Engine: syncengine.EngineConfig{
			Timeout:  cfg.Sync.Timeout,
			Interval: interval,
			Filter:   filter,
			Progress: &syncengine.LogProgress{Logger: logger, Every: 1000},
			OnSync:   persister.save,
		},
	})
	defer manager.Close()

	session, resumed, err := openSession(ctx, manager, store, credentials, cfg.Snapshot.Enabled, logger)
	if err != nil {
		return loginHint(err)
	}
	if resumed && (opts.once || opts.list) {
		// The snapshot may be stale; catch up before reporting.
		if _, err := session.Engine().Sync(ctx, session.Since()); err != nil {
			var applyErr *syncengine.ApplyError
			if !errors.As(err, &applyErr) {
				return loginHint(err)
			}
			logger.Warn("sync folded with errors", "error", err)
		}
	}
	persister.save(ctx, session)

	if opts.room != "" {
		eventID, err := session.SendText(ctx, ref.RoomID(opts.room), opts.message)
		if err != nil {
			return err
		}
		logger.Info("message sent", "room_id", opts.room, "event_id", eventID)
		persister.saveRecord(session)
	}

	if opts.list {
		if err := renderRooms(stdout, session.ViewRooms(), renderOptions{NoColor: opts.noColor}); err != nil {
			return err
		}
	}
	if opts.once {
		return nil
	}

	logger.Info("following", "since", session.Since(), "interval", interval)
	return loginHint(session.Engine().Run(ctx, session.Since()))
}

// loginHint adds a login instruction to errors caused by a rejected
// access token.
func loginHint(err error) error {
	if messaging.IsAuthError(err) || errors.Is(err, syncengine.ErrUserMismatch) {
		return fmt.Errorf("%w; log in again with --user-id and --token", err)
	}
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}
