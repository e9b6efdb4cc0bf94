// elevtool inspects elevdump terrain dumps and exports them as images and
// meshes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/elevmesh/internal/config"
	"github.com/Faultbox/elevmesh/internal/logger"
)

func main() {
	err := newRootCmd().Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// app carries state shared by subcommands after the root pre-run.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "elevtool",
		Short: "Inspect and convert elevdump terrain dumps",
		Long: `elevtool works with "elevdump version 2" terrain dumps.

It can validate and summarize a dump, render a flat top-down map with
per-texture colors and depth shading, export welded per-texture meshes
as Wavefront OBJ, and probe single cells.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Config error: %v\n", err)
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Logger error: %v\n", err)
				return err
			}
			logger.Sugar.Debugf("Config: %+v", cfg)
			a.cfg = cfg
			return nil
		},
	}
	config.BindFlags(root.PersistentFlags())

	for _, c := range []*cobra.Command{
		a.infoCmd(),
		a.validateCmd(),
		a.pngCmd(),
		a.objCmd(),
		a.probeCmd(),
	} {
		c.RunE = logErrors(c.RunE)
		root.AddCommand(c)
	}
	return root
}

// logErrors reports a failed command through the logger.
func logErrors(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			logger.Error("command failed", zap.String("command", cmd.Name()), zap.Error(err))
		}
		return err
	}
}
