// Command marketsim runs the agent-based limit-order-market simulator:
// it selects a scenario, constructs agents, runs the simulator to its
// configured horizon, and prints a summary table. Every run is fully
// determined by its config file, seed, and scenario name.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marketsim/internal/config"
	"marketsim/internal/introspect"
	"marketsim/internal/simlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		seedOverride  int64
		scenarioName  string
		csvDir        string
		introspectAddr string
	)

	cmd := &cobra.Command{
		Use:   "marketsim",
		Short: "Run the agent-based limit order market simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if seedOverride >= 0 {
				seed := uint64(seedOverride)
				cfg.Sim.RandomSeed = &seed
			}

			closer, err := simlog.Setup(cfg.Sim)
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			if closer != nil {
				defer closer.Close()
			}

			scenario, err := lookupScenario(scenarioName)
			if err != nil {
				return err
			}
			run, err := scenario(*cfg)
			if err != nil {
				return fmt.Errorf("building scenario %q: %w", scenarioName, err)
			}

			if introspectAddr != "" {
				srv, err := startIntrospection(introspectAddr, run)
				if err == nil {
					defer srv.Shutdown()
				}
			}

			run.Simulator.Run()
			run.Simulator.PrintSummary(os.Stdout, run.AgentNames, 0.0)

			if csvDir != "" {
				if err := writeCSVs(csvDir, run); err != nil {
					return fmt.Errorf("writing csv output: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "path to the simulator config file")
	cmd.Flags().Int64Var(&seedOverride, "seed", -1, "override sim_params.random_seed (negative: use config value)")
	cmd.Flags().StringVar(&scenarioName, "scenario", "basic", "scenario to run: basic, twap-taker, market-maker")
	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "directory to write metrics/depth CSVs into (empty: skip)")
	cmd.Flags().StringVar(&introspectAddr, "introspect", "", "host:port to serve read-only introspection on (empty: disabled)")

	return cmd
}

func startIntrospection(hostport string, run *ScenarioRun) (*introspect.Server, error) {
	host, port, err := splitHostPort(hostport)
	if err != nil {
		return nil, err
	}
	srv, err := introspect.New(host, port, run.Snapshot)
	if err != nil {
		return nil, err
	}
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	go srv.Run(ctx)
	return srv, nil
}
