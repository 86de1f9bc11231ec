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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/blockmhd/riemann"
	"github.com/notargets/blockmhd/sod_shock_tube"
)

type ModelRiemann struct {
	Left, Right riemann.State
	Cs          float64
	FluxType    riemann.FluxType
	Time        float64 // Print the analytic profile at this time when positive
	N           int
}

// RiemannCmd represents the riemann command
var RiemannCmd = &cobra.Command{
	Use:   "riemann",
	Short: "Evaluate the isothermal Riemann flux between two states",
	Long: `
Evaluates the interface flux between a left and a right primitive state
(density, normal velocity, two transverse velocities), reporting the
intermediate state and wave pattern of the exact solver.

blockmhd riemann --left 1,0,0,0 --right 0.125,0,0,0 --time 0.2`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			mr          = &ModelRiemann{}
			left, right []float64
			label       string
		)
		if left, err = cmd.Flags().GetFloat64Slice("left"); err != nil {
			return
		}
		if right, err = cmd.Flags().GetFloat64Slice("right"); err != nil {
			return
		}
		if len(left) != 4 || len(right) != 4 {
			return fmt.Errorf("states need 4 values (density, vn, vt1, vt2), have %d and %d",
				len(left), len(right))
		}
		copy(mr.Left[:], left)
		copy(mr.Right[:], right)
		mr.Cs, _ = cmd.Flags().GetFloat64("cs")
		label, _ = cmd.Flags().GetString("flux")
		if mr.FluxType, err = riemann.ParseFluxType(label); err != nil {
			return
		}
		mr.Time, _ = cmd.Flags().GetFloat64("time")
		mr.N, _ = cmd.Flags().GetInt("n")
		return RunRiemann(os.Stdout, mr)
	},
}

func init() {
	rootCmd.AddCommand(RiemannCmd)
	RiemannCmd.Flags().Float64Slice("left", []float64{1, 0, 0, 0}, "left state: density, normal velocity, transverse velocities")
	RiemannCmd.Flags().Float64Slice("right", []float64{0.125, 0, 0, 0}, "right state: density, normal velocity, transverse velocities")
	RiemannCmd.Flags().Float64("cs", 1, "isothermal sound speed")
	RiemannCmd.Flags().String("flux", "exact", "flux type: exact, lax")
	RiemannCmd.Flags().Float64("time", 0, "print the analytic shock tube profile at this time")
	RiemannCmd.Flags().IntP("n", "n", 20, "number of points in the analytic profile")
}

func RunRiemann(w io.Writer, mr *ModelRiemann) (err error) {
	if mr.Cs <= 0 {
		return fmt.Errorf("sound speed must be positive, have %g", mr.Cs)
	}
	if mr.Left[riemann.IDN] < 0 || mr.Right[riemann.IDN] < 0 {
		return fmt.Errorf("negative density in %v or %v", mr.Left, mr.Right)
	}
	if mr.Time > 0 && mr.N < 2 {
		return fmt.Errorf("profile needs at least 2 points, have %d", mr.N)
	}
	var (
		eos = riemann.Isothermal{Cs: mr.Cs}
		f   riemann.Flux
	)
	fmt.Fprintf(w, "[%s]\t= Flux Type\n", mr.FluxType.Print())
	switch mr.FluxType {
	case riemann.FLUX_Exact:
		var star riemann.Star
		f, star = riemann.NewExactIsothermal(eos).Flux(riemann.IVX, mr.Left, mr.Right)
		fmt.Fprintf(w, "%8.5f\t= Star Density\n", star.Density)
		fmt.Fprintf(w, "%8.5f\t= Star Velocity\n", star.Velocity)
		fmt.Fprintf(w, "[%s]\t= Wave Pattern\n", star.Pattern)
	default:
		f = riemann.NewSolver(mr.FluxType, eos).InterfaceFlux(riemann.IVX, mr.Left, mr.Right)
	}
	fmt.Fprintf(w, "%v\t= Flux\n", f)
	if mr.Time > 0 {
		X, Rho, U := sod_shock_tube.Isothermal_calc(mr.Time, mr.Cs, mr.Left, mr.Right, mr.N)
		for i := range X {
			fmt.Fprintf(w, "%8.5f %8.5f %8.5f\n", X[i], Rho[i], U[i])
		}
	}
	return
}
