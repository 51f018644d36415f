// Package cmd implements the jsondoc command line tool.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/open-policy-agent/opa/logging"
	"github.com/open-policy-agent/opa/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	internal_logging "github.com/styrainc/jsondoc/internal/logging"
	"github.com/styrainc/jsondoc/internal/version"
	"github.com/styrainc/jsondoc/pkg/allocstats"
	"github.com/styrainc/jsondoc/pkg/json"
)

// ExitError carries a non-default exit code out of a command.
type ExitError struct {
	Exit int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Exit)
}

// root holds the state shared by all subcommands, set up in the persistent
// pre-run hook.
type root struct {
	configFile string
	logLevel   *util.EnumFlag
	logFormat  *util.EnumFlag
	allocStats bool

	config Config
	logger logging.Logger
	stats  *allocstats.Allocator
}

func JSONDocCommand() *cobra.Command {
	r := &root{
		logLevel:  util.NewEnumFlag("info", []string{"debug", "info", "warn", "error"}),
		logFormat: util.NewEnumFlag("text", []string{"text", "json", "json-pretty"}),
		logger:    logging.NewNoOpLogger(),
	}

	c := &cobra.Command{
		Use:   path.Base(os.Args[0]),
		Short: "Inspect and reformat JSON documents",

		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return r.setup(c)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			r.report()
		},
	}

	c.PersistentFlags().StringVar(&r.configFile, "config", "", "path to a YAML file with render and log defaults")
	c.PersistentFlags().VarP(r.logLevel, "log-level", "l", "set log level")
	c.PersistentFlags().Var(r.logFormat, "log-format", "set log format")
	c.PersistentFlags().BoolVar(&r.allocStats, "alloc-stats", false, "count buffer allocations and log the totals on exit")

	c.AddCommand(initLex(r))
	c.AddCommand(initFmt(r))
	c.AddCommand(initStats(r))
	c.AddCommand(initVersion())
	return c
}

func (r *root) setup(c *cobra.Command) error {
	if r.configFile != "" {
		cfg, err := LoadConfig(r.configFile)
		if err != nil {
			return err
		}
		r.config = *cfg
	}

	level, format := r.logLevel.String(), r.logFormat.String()
	if !c.Flags().Changed("log-level") && r.config.Log.Level != "" {
		level = r.config.Log.Level
	}
	if !c.Flags().Changed("log-format") && r.config.Log.Format != "" {
		format = r.config.Log.Format
	}
	logger, err := internal_logging.New(c.ErrOrStderr(), level, format)
	if err != nil {
		return err
	}
	r.logger = logger
	r.logger.Debug("%s", version.UserAgent())

	if r.allocStats {
		r.stats = allocstats.New(prometheus.NewRegistry(), nil)
		if err := json.UseAllocator(r.stats); err != nil {
			if errors.Is(err, json.ErrAllocatorInUse) {
				r.logger.Warn("allocation statistics unavailable: %v", err)
				r.stats = nil
				return nil
			}
			return err
		}
	}
	return nil
}

func (r *root) report() {
	if r.stats == nil {
		return
	}
	s := r.stats.Snapshot()
	r.logger.WithFields(map[string]interface{}{
		"allocs":       s.Allocs,
		"reallocs":     s.Reallocs,
		"frees":        s.Frees,
		"bytes_in_use": s.BytesInUse,
	}).Info("allocation statistics")
}

func addWorkersFlag(fs *pflag.FlagSet, workers *int) {
	fs.IntVar(workers, "workers", runtime.NumCPU(), "number of files processed concurrently")
}
