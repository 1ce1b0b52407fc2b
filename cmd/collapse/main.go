package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rescuesim/collapse/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Earthquake and fire collapse simulator",
	}
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	opts := options{Console: os.Stdout}

	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run a scenario for a number of steps and record the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scenario = args[0]
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(ctx, opts.Steps)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigDir, "config", "c", defaultConfigDir(), "directory containing "+config.FileName)
	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 10, "number of steps to run")
	cmd.Flags().StringVar(&opts.Name, "name", "", "run name, defaults to the scenario name")
	return cmd
}
