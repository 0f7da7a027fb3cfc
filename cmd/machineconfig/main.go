package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/machineconfig/internal/config"
	"github.com/jask/machineconfig/internal/logging"
	"github.com/jask/machineconfig/internal/lookup"
	"github.com/jask/machineconfig/internal/metrics"
	"github.com/jask/machineconfig/internal/session"
	"github.com/jask/machineconfig/internal/tui"
)

type options struct {
	configPath  string
	machine     string
	summary     string
	metricsAddr string
	logLevel    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "machineconfig",
		Short: "Configure machines item by item and collect completed configurations",
		Long: `machineconfig opens a terminal form for building machine configurations.

Pick a machine, enter a project number, select items fetched from the lookup
service, give sized items a size, and complete the configuration. Completed
configurations are listed below the form and can be printed on exit with
--summary.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.Flags().StringVarP(&opts.machine, "machine", "m", "", "initial machine keyword")
	root.Flags().StringVar(&opts.summary, "summary", "", "print completed configurations on exit (text|yaml)")
	root.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	root.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	root.AddCommand(newConfigCmd(opts), newMachinesCmd(opts))
	return root
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	format, printSummary, err := session.ParseSummaryFormat(opts.summary)
	if err != nil {
		return err
	}

	catalog, err := buildCatalog(cfg, opts.machine)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	client := lookup.NewClient(cfg.Lookup.Endpoint,
		lookup.WithTimeout(cfg.Lookup.Timeout),
		lookup.WithLogger(logger),
	)
	sess := session.New(catalog, session.WithLogger(logger))
	metrics.Observe(sess)

	logger.Info("starting",
		zap.String("endpoint", client.Endpoint()),
		zap.String("machine", string(catalog.Initial)),
	)

	p := tea.NewProgram(tui.New(ctx, sess, client, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run: %w", err)
	}

	if printSummary {
		return session.WriteSummary(cmd.OutOrStdout(), sess.CompletedConfigurations(), format)
	}
	return nil
}

func buildCatalog(cfg config.Config, machine string) (session.Catalog, error) {
	catalog, err := session.NewCatalog(cfg.Machines.Keywords, cfg.Machines.Sizes, cfg.Machines.Initial)
	if err != nil {
		return session.Catalog{}, err
	}
	if strings.TrimSpace(machine) == "" {
		return catalog, nil
	}
	k, err := catalog.Resolve(machine)
	if err != nil {
		return session.Catalog{}, fmt.Errorf("--machine: %w", err)
	}
	catalog.Initial = k
	return catalog, nil
}

func newMachinesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "machines",
		Short: "List the configured machine keywords and sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			catalog, err := buildCatalog(cfg, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range catalog.Keywords {
				marker := " "
				if k == catalog.Initial {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, k)
			}
			sizes := make([]string, len(catalog.Sizes))
			for i, s := range catalog.Sizes {
				sizes[i] = string(s)
			}
			fmt.Fprintf(out, "sizes: %s\n", strings.Join(sizes, ", "))
			return nil
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Defaults(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}
