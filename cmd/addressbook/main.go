// Address book service.
//
// Holds named address books of contacts in memory and serves them over an
// HTTP API with a WebSocket change feed. Registry changes are optionally
// published to MQTT and registry size is optionally recorded in InfluxDB.
//
// Usage:
//
//	addressbook [-config path] [-list]
//	addressbook -issue-token <subject> [-role reader|editor] [-token-ttl 24h]
//
// -list is a configuration check: the registry lives only in the serving
// process, so it prints the books a fresh start would create from the
// config (all empty) and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/addressbook/internal/addressbook"
	"github.com/nerrad567/addressbook/internal/api"
	"github.com/nerrad567/addressbook/internal/auth"
	"github.com/nerrad567/addressbook/internal/infrastructure/config"
	"github.com/nerrad567/addressbook/internal/infrastructure/influxdb"
	"github.com/nerrad567/addressbook/internal/infrastructure/logging"
	"github.com/nerrad567/addressbook/internal/infrastructure/mqtt"
	"github.com/nerrad567/addressbook/internal/listing"
	"github.com/nerrad567/addressbook/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// options are the parsed command-line flags.
type options struct {
	configPath string
	list       bool
	issueToken string
	role       string
	tokenTTL   time.Duration
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses args into options.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("addressbook", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (default $ADDRESSBOOK_CONFIG or "+defaultConfigPath+")")
	fs.BoolVar(&opts.list, "list", false, "print the address books the config seeds at startup, then exit")
	fs.StringVar(&opts.issueToken, "issue-token", "", "print a signed API token for the given subject, then exit")
	fs.StringVar(&opts.role, "role", string(auth.RoleReader), "role for -issue-token (reader or editor)")
	fs.DurationVar(&opts.tokenTTL, "token-ttl", 24*time.Hour, "lifetime for -issue-token")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	configPath := getConfigPath(opts.configPath)
	cfg, err := loadConfig(configPath, opts.configPath != "" || os.Getenv("ADDRESSBOOK_CONFIG") != "")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if opts.issueToken != "" {
		return issueToken(stdout, cfg.Security.JWT, opts)
	}

	manager, err := newManager(cfg.AddressBook)
	if err != nil {
		return err
	}

	if opts.list {
		return listing.PrintRegistry(stdout, manager)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting address book service",
		"version", version,
		"commit", commit,
		"build_date", date,
		"config", configPath,
	)
	manager.SetLogger(log.With("component", "addressbook"))

	return serve(ctx, cfg, manager, log)
}

// loadConfig reads the config file. A missing file is only tolerated when
// the path was not given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if explicit {
		return config.Load(path)
	}
	return config.LoadOrDefault(path)
}

// getConfigPath returns the flag value, else ADDRESSBOOK_CONFIG, else the default.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("ADDRESSBOOK_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newManager creates the registry and the configured seed books.
func newManager(cfg config.AddressBookConfig) (*addressbook.Manager, error) {
	manager := addressbook.NewManager()
	for _, name := range cfg.Books {
		if name == addressbook.DefaultBook {
			continue
		}
		if _, err := manager.CreateAddressBook(name); err != nil {
			return nil, fmt.Errorf("creating address book %q: %w", name, err)
		}
	}
	return manager, nil
}

// issueToken prints a signed token for opts.issueToken.
func issueToken(w io.Writer, cfg config.JWTConfig, opts options) error {
	if cfg.Secret == "" {
		return errors.New("security.jwt.secret is required to issue tokens (set ADDRESSBOOK_JWT_SECRET)")
	}
	token, err := auth.GenerateToken(opts.issueToken, auth.Role(opts.role), cfg.Secret, cfg.Issuer, opts.tokenTTL)
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

// serve wires the optional adapters and runs the API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, manager *addressbook.Manager, log *logging.Logger) error {
	notifiers := addressbook.Notifiers{}
	checks := map[string]api.HealthChecker{}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		notifiers = append(notifiers, mqtt.NewEventPublisher(mqttClient, log.With("component", "mqtt")))
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		reporter := telemetry.NewReporter(manager, influxClient, cfg.GetReportInterval(), log.With("component", "telemetry"))
		reportCtx, stopReporter := context.WithCancel(ctx)
		reporterDone := make(chan struct{})
		go func() {
			defer close(reporterDone)
			reporter.Run(reportCtx)
		}()
		// Runs before the Close above so the final report is flushed.
		defer func() {
			stopReporter()
			<-reporterDone
		}()
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log.With("component", "api"),
		Manager:  manager,
		Checks:   checks,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	notifiers = append(notifiers, server.Hub())
	manager.SetNotifier(notifiers)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal",
		"books", len(manager.AddressBooks()),
		"auth", cfg.Security.JWT.Enabled,
	)

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API, InfluxDB, MQTT.
	return nil
}
