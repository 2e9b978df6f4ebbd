package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/NethermindEth/rangekv/config"
	"github.com/NethermindEth/rangekv/db/pebble"
	"github.com/NethermindEth/rangekv/metrics"
	"github.com/NethermindEth/rangekv/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const (
	configF          = "config"
	dbPathF          = "db-path"
	logLevelF        = "log-level"
	colourF          = "colour"
	cacheSizeF       = "cache-size"
	maxOpenFilesF    = "max-open-files"
	createIfMissingF = "create-if-missing"
	errorIfExistsF   = "error-if-exists"
	metricsF         = "metrics"
	metricsHostF     = "metrics-host"
	metricsPortF     = "metrics-port"
	hexF             = "hex"

	configFlagUsage    = "The YAML configuration file."
	dbPathUsage        = "Location of the database files."
	logLevelUsage      = "Options: debug, info, warn, error, fatal."
	colourUsage        = "Use `--colour=false` command to disable colourized outputs (ANSI Escape Codes)."
	cacheSizeUsage     = "Determines the amount of memory (in megabytes) allocated for caching data in the database."
	maxOpenFilesUsage  = "The maximum number of files the database can have open at the same time."
	createUsage        = "Create the database when none exists at --db-path."
	errorIfExistsUsage = "Fail when a database already exists at --db-path."
	metricsUsage       = "Enables the Prometheus metrics endpoint while the command runs."
	metricsHostUsage   = "The interface on which the Prometheus endpoint will listen for requests."
	metricsPortUsage   = "The port on which the Prometheus endpoint will listen for requests."
	hexUsage           = "Keys and values on the command line and in the output are hex encoded."
)

// session is what every store command runs with.
type session struct {
	cfg   *config.Config
	log   utils.Logger
	store *pebble.DB
	codec codec
}

func NewCmd() *cobra.Command {
	var cfgFile string
	logLevel := config.DefaultLogLevel

	rootCmd := &cobra.Command{
		Use:           "rangekv [command]",
		Short:         "Ordered key-value store with range cursors.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, configF, "", configFlagUsage)
	flags.String(dbPathF, "", dbPathUsage)
	flags.Var(&logLevel, logLevelF, logLevelUsage)
	flags.Bool(colourF, config.DefaultColour, colourUsage)
	flags.Uint(cacheSizeF, config.DefaultCacheSizeMB, cacheSizeUsage)
	flags.Int(maxOpenFilesF, config.DefaultMaxOpenFiles, maxOpenFilesUsage)
	flags.Bool(createIfMissingF, config.DefaultCreateIfMissing, createUsage)
	flags.Bool(errorIfExistsF, config.DefaultErrorIfExists, errorIfExistsUsage)
	flags.Bool(metricsF, config.DefaultMetrics, metricsUsage)
	flags.String(metricsHostF, config.DefaultMetricsHost, metricsHostUsage)
	flags.Uint16(metricsPortF, config.DefaultMetricsPort, metricsPortUsage)
	flags.Bool(hexF, false, hexUsage)

	open := func(cmd *cobra.Command) (*config.Config, error) {
		v := viper.New()
		if cfgFile != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
		v.SetEnvPrefix("RANGEKV")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, err
		}
		return config.Load(v)
	}

	// run opens the store for the duration of fn, and the metrics endpoint when enabled.
	run := func(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := open(cmd)
			if err != nil {
				return err
			}
			hex, err := cmd.Flags().GetBool(hexF)
			if err != nil {
				return err
			}

			log, err := utils.NewZapLogger(cfg.LogLevel, cfg.Colour)
			if err != nil {
				return err
			}

			store, err := pebble.Open(cfg.DatabasePath, cfg.OpenOptions(), cfg.PebbleOptions()...)
			if err != nil {
				return fmt.Errorf("open %s: %w", cfg.DatabasePath, err)
			}
			log.Debugw("Opened database", "path", cfg.DatabasePath)
			defer func() {
				err = utils.RunAndWrapOnError(store.Close, err)
			}()

			if cfg.Metrics {
				registry := metrics.PrometheusRegistry()
				store.WithListener(metrics.NewDBListener(registry))
				registry.MustRegister(metrics.NewStoreCollector(store.Metrics))

				srv, srvErr := newMetricsService(cfg.MetricsAddr(), registry)
				if srvErr != nil {
					return srvErr
				}
				ctx, cancel := context.WithCancel(cmd.Context())
				stopMetrics := srv.Start(ctx, log)
				log.Infow("Metrics endpoint listening", "addr", srv.Addr())
				defer func() {
					cancel()
					err = utils.RunAndWrapOnError(stopMetrics, err)
				}()
			}

			return fn(cmd, args, &session{cfg: cfg, log: log, store: store, codec: codec{hex: hex}})
		}
	}

	rootCmd.AddCommand(
		getCmd(run), putCmd(run), deleteCmd(run), hasCmd(run),
		scanCmd(run), countCmd(run),
		applyCmd(run),
		exportCmd(run), importCmd(run),
		flushCmd(run), compactCmd(run), statsCmd(run),
	)
	return rootCmd
}

type runner = func(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error
