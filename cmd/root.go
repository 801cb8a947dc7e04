package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/studydesk/prio/internal/config"
	"github.com/studydesk/prio/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "prio",
	Short: "Rank your assignments by what matters now",
	Long: `prio scores your assignments by deadline, weight, and effort, and can ask
an AI ranking service for a second opinion.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging()
		logChangedFlags(cmd)
	},
	RunE: runTasks,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging sends logrus output to stderr at the configured level.
// PRIO_DEBUG=1 forces debug.
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	level := log.WarnLevel
	if cfg, err := config.Load(); err == nil {
		if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
			level = lvl
		}
	}
	if v := os.Getenv("PRIO_DEBUG"); v != "" && v != "0" {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

func logChangedFlags(cmd *cobra.Command) {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	var changed []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = append(changed, fmt.Sprintf("%s=%s", f.Name, f.Value.String()))
		}
	})
	log.WithFields(log.Fields{
		"command": cmd.CommandPath(),
		"flags":   strings.Join(changed, ","),
	}).Debug("running command")
}
