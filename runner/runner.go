package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/blockmhd/bvals"
	"github.com/notargets/blockmhd/comm"
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/riemann"
	"github.com/notargets/blockmhd/types"
)

type Options struct {
	Solver riemann.Solver // Defaults to the exact isothermal solver with unit sound speed
	Logger *log.Logger    // Defaults to log.Default()
}

// Simulation drives the boundary exchange of every block of a mesh, one
// goroutine per rank, with the blocks of a rank handled in order.
type Simulation struct {
	Mesh   *grid.Mesh
	World  *comm.World
	Layout *bvals.Layout
	BVals  []*bvals.BoundaryValues // Indexed by GID
	solver riemann.Solver
	logger *log.Logger
}

func New(mesh *grid.Mesh, opts Options) (s *Simulation, err error) {
	var (
		b0 = mesh.Block(0)
	)
	s = &Simulation{
		Mesh:   mesh,
		World:  comm.NewWorld(mesh.Ranks),
		BVals:  make([]*bvals.BoundaryValues, mesh.NumBlocks()),
		solver: opts.Solver,
		logger: opts.Logger,
	}
	if s.solver == nil {
		s.solver = riemann.NewExactIsothermal(riemann.Isothermal{Cs: 1})
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.Layout, err = bvals.NewLayout(b0.Nx1, b0.Nx2, b0.Nx3, mesh.NGhost); err != nil {
		return nil, err
	}
	for gid, pmb := range mesh.Blocks {
		if s.BVals[gid], err = bvals.NewBoundaryValues(pmb, s.Layout, s.World.Comm(pmb.Rank)); err != nil {
			return nil, err
		}
	}
	for _, bv := range s.BVals {
		rank := bv.Block().Rank
		lookup := func(gid int) *bvals.BoundaryValues {
			if mesh.Block(gid).Rank != rank {
				return nil
			}
			return s.BVals[gid]
		}
		if err = bv.Link(lookup); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("simulation ready", "world", s.World.ID, "ranks", mesh.Ranks,
		"blocks", mesh.NumBlocks(), "block", fmt.Sprintf("%dx%dx%d", b0.Nx1, b0.Nx2, b0.Nx3))
	return
}

// Flag is the exchange flag of a cycle.
func Flag(cycle int) int { return cycle % (comm.MaxFlag + 1) }

// Exchange fills every ghost zone of the mesh for one cycle. The context is
// checked before the cycle starts; a started cycle always runs to completion
// since ranks block on each other.
func (s *Simulation) Exchange(ctx context.Context, cycle int) (err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	var (
		start = time.Now()
		flag  = Flag(cycle)
		eg    errgroup.Group
	)
	for rank := 0; rank < s.Mesh.Ranks; rank++ {
		rank := rank
		blocks := s.rankValues(rank)
		eg.Go(func() error {
			s.exchangeRank(rank, blocks, flag)
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return
	}
	s.logger.Debug("exchange", "cycle", cycle, "flag", flag, "elapsed", time.Since(start))
	return
}

func (s *Simulation) rankValues(rank int) (bvs []*bvals.BoundaryValues) {
	for _, pmb := range s.Mesh.RankBlocks(rank) {
		bvs = append(bvs, s.BVals[pmb.GID])
	}
	return
}

// exchangeRank runs the exchange of one rank. Transport failures are fatal
// and panic, there is no partial cycle to recover from.
func (s *Simulation) exchangeRank(rank int, bvs []*bvals.BoundaryValues, flag int) {
	if len(bvs) == 0 {
		return
	}
	var (
		nDirs = s.Layout.NDirs
		mhd   = bvs[0].Block().B != nil
	)
	for _, bv := range bvs {
		bv.StartReceivingHydro(flag)
		if mhd {
			bv.StartReceivingField(flag)
		}
		bv.StartReceivingEMF(flag)
	}
	for d := types.Direction(0); int(d) < nDirs; d += 2 {
		for _, bv := range bvs {
			u := bv.Block().U
			bv.LoadAndSendHydro(d, u, flag)
			bv.LoadAndSendHydro(d.Opposite(), u, flag)
		}
		for _, bv := range bvs {
			u := bv.Block().U
			bv.ReceiveAndSetHydro(d, u)
			bv.ReceiveAndSetHydro(d.Opposite(), u)
		}
	}
	if mhd {
		for d := types.Direction(0); int(d) < nDirs; d += 2 {
			for _, bv := range bvs {
				b := bv.Block().B
				bv.LoadAndSendField(d, b, flag)
				bv.LoadAndSendField(d.Opposite(), b, flag)
			}
			for _, bv := range bvs {
				b := bv.Block().B
				bv.ReceiveAndSetField(d, b)
				bv.ReceiveAndSetField(d.Opposite(), b)
			}
		}
		for _, bv := range bvs {
			bv.LoadAndSendEMF(bv.Block().E, flag)
		}
		for _, bv := range bvs {
			bv.ReceiveAndSetEMF(bv.Block().E)
		}
	}
	for _, bv := range bvs {
		for d := types.Direction(0); int(d) < nDirs; d++ {
			bv.WaitSendHydro(d)
			if mhd {
				bv.WaitSendField(d)
			}
		}
		bv.WaitSendEMF()
	}
	s.logger.Debug("rank exchanged", "rank", rank, "blocks", len(bvs), "flag", flag)
}

// globalIndex maps a storage index of pmb to the wrapped global index.
func (s *Simulation) globalIndex(pmb *grid.MeshBlock, k, j, i int) (gi, gj, gk int) {
	wrap := func(g, n int) int { return ((g % n) + n) % n }
	gk, gj, gi = pmb.GlobalIndex(k, j, i)
	nx := s.Mesh.Config.Nx
	return wrap(gi, nx[0]), wrap(gj, nx[1]), wrap(gk, nx[2])
}

// arrays lists the data of pmb with the variable offset and the face axis
// of each array, -1 for cell data.
func arrays(pmb *grid.MeshBlock) (as []*grid.Array, offsets, faces []int) {
	as, offsets, faces = []*grid.Array{pmb.U}, []int{0}, []int{-1}
	if pmb.B != nil {
		for f := 0; f < 3; f++ {
			as = append(as, pmb.B.Face(types.FaceOrientation(f)))
			offsets = append(offsets, grid.NHydro+f)
			faces = append(faces, f)
		}
	}
	return
}

// Fill sets the interior cells and faces of every block from fn.
func (s *Simulation) Fill(fn GlobalField) {
	for _, pmb := range s.Mesh.Blocks {
		as, offsets, faces := arrays(pmb)
		for a, arr := range as {
			hi := [3]int{pmb.Ie, pmb.Je, pmb.Ke}
			if faces[a] >= 0 {
				hi[faces[a]]++
			}
			for n := 0; n < arr.NVar; n++ {
				for k := pmb.Ks; k <= hi[2]; k++ {
					for j := pmb.Js; j <= hi[1]; j++ {
						for i := pmb.Is; i <= hi[0]; i++ {
							gi, gj, gk := s.globalIndex(pmb, k, j, i)
							arr.Set(n, k, j, i, fn(offsets[a]+n, gi, gj, gk))
						}
					}
				}
			}
		}
	}
}

// CheckGhosts counts the entries of all blocks, ghost zones included, that
// differ from the periodic global field fn. Ghost zones beyond a mesh
// boundary that is not periodic are skipped.
func (s *Simulation) CheckGhosts(fn GlobalField) (bad int) {
	for _, pmb := range s.Mesh.Blocks {
		as, offsets, faces := arrays(pmb)
		for a, arr := range as {
			for n := 0; n < arr.NVar; n++ {
				for k := 0; k < arr.Nk; k++ {
					for j := 0; j < arr.Nj; j++ {
						for i := 0; i < arr.Ni; i++ {
							if s.beyondPhysical(pmb, faces[a], k, j, i) {
								continue
							}
							gi, gj, gk := s.globalIndex(pmb, k, j, i)
							if arr.At(n, k, j, i) != fn(offsets[a]+n, gi, gj, gk) {
								bad++
							}
						}
					}
				}
			}
		}
	}
	return
}

// beyondPhysical reports whether a storage index lies outside the mesh
// across a boundary that is not periodic. face is the axis the data is face
// centred along, or -1.
func (s *Simulation) beyondPhysical(pmb *grid.MeshBlock, face, k, j, i int) bool {
	var (
		gk, gj, gi = pmb.GlobalIndex(k, j, i)
		g          = [3]int{gi, gj, gk}
		nx         = s.Mesh.Config.Nx
	)
	for a := 0; a < 3; a++ {
		if nx[a] == 1 {
			continue
		}
		hi := nx[a] - 1
		if a == face {
			hi++
		}
		inner, outer := types.Direction(2*a), types.Direction(2*a+1)
		if g[a] < 0 && s.Mesh.BCs[inner] != types.BC_Periodic {
			return true
		}
		if g[a] > hi && s.Mesh.BCs[outer] != types.BC_Periodic {
			return true
		}
	}
	return false
}

// FluxSweep computes the x1 interface fluxes of every block interior from
// donor cell primitive states. The result of a block is face centred along
// x1 and set on faces Is..Ie+1.
func (s *Simulation) FluxSweep() (fluxes map[int]*grid.Array) {
	fluxes = make(map[int]*grid.Array, s.Mesh.NumBlocks())
	for _, pmb := range s.Mesh.Blocks {
		var (
			u   = pmb.U
			ni  = pmb.Ni + 1
			flx = grid.NewArray(grid.NHydro, pmb.Nk, pmb.Nj, ni)
		)
		var wl, wr, f [4][]float64
		for n := 0; n < 4; n++ {
			wl[n], wr[n], f[n] = make([]float64, ni), make([]float64, ni), make([]float64, ni)
		}
		for k := pmb.Ks; k <= pmb.Ke; k++ {
			for j := pmb.Js; j <= pmb.Je; j++ {
				for i := pmb.Is; i <= pmb.Ie+1; i++ {
					l, r := primitive(u, k, j, i-1), primitive(u, k, j, i)
					for n := 0; n < 4; n++ {
						wl[n][i], wr[n][i] = l[n], r[n]
					}
				}
				s.solver.Sweep(riemann.IVX, pmb.Is, pmb.Ie+1, wl, wr, f)
				for n := 0; n < grid.NHydro; n++ {
					for i := pmb.Is; i <= pmb.Ie+1; i++ {
						flx.Set(n, k, j, i, f[n][i])
					}
				}
			}
		}
		fluxes[pmb.GID] = flx
	}
	return
}

func primitive(u *grid.Array, k, j, i int) (w riemann.State) {
	d := u.At(grid.IDN, k, j, i)
	w[riemann.IDN] = d
	if d == 0 {
		return
	}
	w[riemann.IVX] = u.At(grid.IM1, k, j, i) / d
	w[riemann.IVY] = u.At(grid.IM2, k, j, i) / d
	w[riemann.IVZ] = u.At(grid.IM3, k, j, i) / d
	return
}

// Step exchanges the ghost zones and applies one first order x1 update
// with time step over cell width dtdx.
func (s *Simulation) Step(ctx context.Context, cycle int, dtdx float64) (err error) {
	if err = s.Exchange(ctx, cycle); err != nil {
		return
	}
	fluxes := s.FluxSweep()
	for _, pmb := range s.Mesh.Blocks {
		var (
			u   = pmb.U
			flx = fluxes[pmb.GID]
		)
		for n := 0; n < grid.NHydro; n++ {
			for k := pmb.Ks; k <= pmb.Ke; k++ {
				for j := pmb.Js; j <= pmb.Je; j++ {
					for i := pmb.Is; i <= pmb.Ie; i++ {
						du := dtdx * (flx.At(n, k, j, i+1) - flx.At(n, k, j, i))
						u.Set(n, k, j, i, u.At(n, k, j, i)-du)
					}
				}
			}
		}
	}
	return
}

// Totals sums each conserved variable over the interior of the mesh.
func (s *Simulation) Totals() (sum [grid.NHydro]float64) {
	for _, pmb := range s.Mesh.Blocks {
		u := pmb.U
		for n := 0; n < grid.NHydro; n++ {
			for k := pmb.Ks; k <= pmb.Ke; k++ {
				for j := pmb.Js; j <= pmb.Je; j++ {
					ind := u.Index(n, k, j, pmb.Is)
					sum[n] += floats.Sum(u.Data[ind : ind+pmb.Nx1])
				}
			}
		}
	}
	return
}
