package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lpjones/PACT"
	"github.com/lpjones/PACT/resource"
)

const defaultSettings = "pact.yaml"

// app carries state shared by all subcommands.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	logger *pact.Logger

	settingsPath string
	logLevel     string
	logFormat    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: newSettings(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "pact",
		Short:         "Analyze PEBS memory-access traces",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			explicit := cmd.Flags().Changed("settings")
			if err := loadSettings(a.v, a.settingsPath, explicit); err != nil {
				return err
			}
			logger, err := newLogger(stderr, a.logLevel, a.logFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.settingsPath, "settings", defaultSettings, "YAML settings file")
	pf.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newPlotCmd(a), newClustersCmd(a), newStatsCmd(a))
	return root
}

func newLogger(w io.Writer, level, format string) (*pact.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return pact.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return pact.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}

// resources builds the shared controller from the jobs, memory and upload
// settings.
func (a *app) resources() *resource.Controller {
	return resource.NewController(resource.Config{
		MaxWorkers:        a.v.GetInt64(keyJobs),
		MemoryLimitBytes:  a.v.GetInt64(keyMemoryLimitMB) << 20,
		UploadBytesPerSec: a.v.GetInt64(keyUploadRate),
	})
}

// bindFlags lets the running command's flags override settings. Keys are
// bound only for the command that runs since viper keeps one flag per key.
func (a *app) bindFlags(cmd *cobra.Command, keyFlags ...map[string]string) {
	for _, m := range keyFlags {
		for key, flag := range m {
			_ = a.v.BindPFlag(key, cmd.Flags().Lookup(flag))
		}
	}
}
