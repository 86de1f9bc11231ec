/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/blockmhd/InputParameters"
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/riemann"
	"github.com/notargets/blockmhd/runner"
)

type ModelExchange struct {
	InputFile  string
	Verify     bool
	Profile    bool
	ProfileDir string
	Perf       bool
}

// ExchangeCmd represents the exchange command
var ExchangeCmd = &cobra.Command{
	Use:   "exchange",
	Short: "Run ghost zone exchange cycles on a block mesh",
	Long: `
Builds the block mesh described by the input file, spreads it over in-process
ranks and runs donor cell cycles, each one a full boundary exchange followed by
an x1 flux sweep with the configured Riemann solver.

blockmhd exchange -I input.yaml --verify`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		me := &ModelExchange{}
		if me.InputFile, err = cmd.Flags().GetString("inputFile"); err != nil {
			return
		}
		me.Verify, _ = cmd.Flags().GetBool("verify")
		me.Profile, _ = cmd.Flags().GetBool("profile")
		me.ProfileDir, _ = cmd.Flags().GetString("profileDir")
		me.Perf, _ = cmd.Flags().GetBool("perf")
		return RunExchange(cmd.Context(), me)
	},
}

func init() {
	rootCmd.AddCommand(ExchangeCmd)
	ExchangeCmd.Flags().StringP("inputFile", "I", "", "YAML or TOML file for input parameters like:\n\t- Nx1, BlockNx1\n\t- Ranks, Cycles\n\t- BCs")
	ExchangeCmd.Flags().Bool("verify", false, "check every ghost zone against a global field before running")
	ExchangeCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
	ExchangeCmd.Flags().String("profileDir", ".", "directory for the CPU profile")
	ExchangeCmd.Flags().Bool("perf", false, "count CPU instructions of the run with perf counters")
}

const exampleFile = `
########################################
Title: "Test Case"
Nx1: 64
Nx2: 64
BlockNx1: 16
BlockNx2: 16
Ranks: 4
Cycles: 100
CFL: 0.5
IsoSoundSpeed: 1.
FluxType: Exact # Can be "Lax"
InitType: ShockTube # Can be "Wave"
BCs:
  ix1: reflect
  ox1: outflow
########################################
`

func RunExchange(ctx context.Context, me *ModelExchange) (err error) {
	var (
		logger = loggerFromContext(ctx)
		ip     *InputParameters.InputParameters
		cfg    grid.MeshConfig
		mesh   *grid.Mesh
		sim    *runner.Simulation
	)
	if len(me.InputFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return fmt.Errorf("must supply an input parameters file (-I, --inputFile)")
	}
	if ip, err = InputParameters.Read(me.InputFile); err != nil {
		return
	}
	if err = ip.Validate(); err != nil {
		return
	}
	ip.Print()
	if cfg, err = ip.MeshConfig(); err != nil {
		return
	}
	if mesh, err = grid.NewMesh(cfg); err != nil {
		return
	}
	solver := riemann.NewSolver(riemann.NewFluxType(ip.FluxType), riemann.Isothermal{Cs: ip.IsoSoundSpeed})
	if sim, err = runner.New(mesh, runner.Options{Solver: solver, Logger: logger}); err != nil {
		return
	}
	logger.Info("mesh ready", "blocks", mesh.NumBlocks(), "ranks", mesh.Ranks, "world", sim.World.ID)
	if me.Verify {
		if err = verify(ctx, sim, logger); err != nil {
			return
		}
	}
	if me.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(me.ProfileDir), profile.Quiet).Stop()
	}
	sim.Fill(runner.NewInitType(ip.InitType).Field(cfg.Nx))
	run := func() error {
		return cycles(ctx, sim, ip, logger)
	}
	if me.Perf {
		return countInstructions(run, logger)
	}
	return run()
}

// verify fills the mesh with a field that differs at every global index and
// checks that one exchange reproduces it in every ghost zone.
func verify(ctx context.Context, sim *runner.Simulation, logger *log.Logger) (err error) {
	field := func(n, gi, gj, gk int) float64 {
		return float64(n*1000000000 + gk*1000000 + gj*1000 + gi)
	}
	sim.Fill(field)
	if err = sim.Exchange(ctx, 0); err != nil {
		return
	}
	if bad := sim.CheckGhosts(field); bad != 0 {
		return fmt.Errorf("%d ghost values differ from the global field", bad)
	}
	logger.Info("ghost zones verified")
	return
}

func cycles(ctx context.Context, sim *runner.Simulation, ip *InputParameters.InputParameters,
	logger *log.Logger) (err error) {
	var (
		start  = time.Now()
		dtdx   = ip.TimeStep()
		before = sim.Totals()
	)
	for cycle := 0; cycle < ip.Cycles; cycle++ {
		if err = sim.Step(ctx, cycle, dtdx); err != nil {
			return
		}
	}
	after := sim.Totals()
	logger.Info("cycles done", "cycles", ip.Cycles, "elapsed", time.Since(start).Round(time.Millisecond),
		"mass", after[grid.IDN], "massChange", after[grid.IDN]-before[grid.IDN])
	return
}
