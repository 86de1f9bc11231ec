package grid

import (
	"errors"
	"fmt"

	"github.com/notargets/blockmhd/types"
	"github.com/notargets/blockmhd/utils"
)

// NGhost is the default ghost depth on each side of an active axis.
const NGhost = 2

var ErrInvalidMesh = errors.New("invalid mesh")

type NeighborKind uint8

const (
	None   NeighborKind = iota // Physical boundary
	Local                      // Neighbor lives in this process
	Remote                     // Neighbor lives on another rank
)

func (nk NeighborKind) String() string {
	switch nk {
	case Local:
		return "Local"
	case Remote:
		return "Remote"
	}
	return "None"
}

// NeighborRef describes the block across one face, as seen from the owning
// block's rank.
type NeighborRef struct {
	Kind     NeighborKind
	GID, LID int
	Rank     int
	Periodic bool // Reached by wrapping across a periodic mesh boundary
}

func NoNeighbor() NeighborRef { return NeighborRef{Kind: None, GID: -1, LID: -1, Rank: -1} }

func LocalNeighbor(gid, lid, rank int) NeighborRef {
	return NeighborRef{Kind: Local, GID: gid, LID: lid, Rank: rank}
}

func RemoteNeighbor(gid, lid, rank int) NeighborRef {
	return NeighborRef{Kind: Remote, GID: gid, LID: lid, Rank: rank}
}

func (nr NeighborRef) Exists() bool { return nr.Kind != None }

type MeshConfig struct {
	Nx             [3]int // Cells in the whole mesh
	BlockNx        [3]int // Cells in one block
	NGhost         int
	BCs            [types.NumDirections]types.BCFLAG
	Ranks          int
	MagneticFields bool
}

type Mesh struct {
	Config    MeshConfig
	NBlock    [3]int
	NGhost    int
	BCs       [types.NumDirections]types.BCFLAG
	Ranks     int
	Blocks    []*MeshBlock // Indexed by GID
	Partition *utils.PartitionMap
}

// MeshBlock is one rectangular block of cells with its ghost margins.
type MeshBlock struct {
	GID, LID, Rank         int
	Loc                    [3]int // Logical location in the block lattice
	Nx1, Nx2, Nx3          int
	NGhost                 int
	Is, Ie, Js, Je, Ks, Ke int
	Ni, Nj, Nk             int // Storage extents including ghosts
	Neighbor               [types.NumDirections]NeighborRef
	BlockBCs               [types.NumDirections]types.BCFLAG
	Mesh                   *Mesh
	U                      *Array          // Conserved variables
	B                      *InterfaceField // Face-centred magnetic field
	E                      *EdgeFlux       // Edge field exchange payload
}

func (cfg MeshConfig) validate() (err error) {
	if cfg.NGhost < 1 {
		return fmt.Errorf("%w: ghost depth %d must be positive", ErrInvalidMesh, cfg.NGhost)
	}
	if cfg.Ranks < 1 {
		return fmt.Errorf("%w: rank count %d must be positive", ErrInvalidMesh, cfg.Ranks)
	}
	for a := 0; a < 3; a++ {
		nx, bnx := cfg.Nx[a], cfg.BlockNx[a]
		if nx < 1 || bnx < 1 {
			return fmt.Errorf("%w: axis %d has %d mesh cells and %d block cells",
				ErrInvalidMesh, a+1, nx, bnx)
		}
		if nx%bnx != 0 {
			return fmt.Errorf("%w: axis %d mesh cells %d not divisible by block cells %d",
				ErrInvalidMesh, a+1, nx, bnx)
		}
		if a > 0 && (nx == 1) != (bnx == 1) {
			return fmt.Errorf("%w: axis %d is collapsed in the mesh or the block but not both",
				ErrInvalidMesh, a+1)
		}
		if (a == 0 || nx > 1) && bnx < cfg.NGhost {
			return fmt.Errorf("%w: axis %d block cells %d smaller than ghost depth %d",
				ErrInvalidMesh, a+1, bnx, cfg.NGhost)
		}
	}
	if cfg.Nx[1] == 1 && cfg.Nx[2] > 1 {
		return fmt.Errorf("%w: x3 may only be active when x2 is active", ErrInvalidMesh)
	}
	nd := types.ActiveDirections(cfg.Nx[1], cfg.Nx[2])
	for d := types.Direction(0); int(d) < nd; d += 2 {
		inner, outer := cfg.BCs[d], cfg.BCs[d.Opposite()]
		if (inner == types.BC_Periodic) != (outer == types.BC_Periodic) {
			return fmt.Errorf("%w: periodic boundary on %s requires periodic on %s",
				ErrInvalidMesh, d, d.Opposite())
		}
	}
	return
}

// NewMesh lays out a uniform lattice of equal blocks, numbers them x1 fastest
// and places contiguous runs of block ids on each rank.
func NewMesh(cfg MeshConfig) (m *Mesh, err error) {
	if err = cfg.validate(); err != nil {
		return
	}
	m = &Mesh{
		Config: cfg,
		NGhost: cfg.NGhost,
		BCs:    cfg.BCs,
		Ranks:  cfg.Ranks,
	}
	var nb = 1
	for a := 0; a < 3; a++ {
		m.NBlock[a] = cfg.Nx[a] / cfg.BlockNx[a]
		nb *= m.NBlock[a]
	}
	m.Partition = utils.NewPartitionMap(cfg.Ranks, nb)
	m.Blocks = make([]*MeshBlock, nb)
	for gid := 0; gid < nb; gid++ {
		m.Blocks[gid] = m.newBlock(gid)
	}
	for _, b := range m.Blocks {
		m.connect(b)
	}
	return
}

func (m *Mesh) gidOf(loc [3]int) int {
	return loc[0] + m.NBlock[0]*(loc[1]+m.NBlock[1]*loc[2])
}

func (m *Mesh) locOf(gid int) (loc [3]int) {
	loc[0] = gid % m.NBlock[0]
	loc[1] = (gid / m.NBlock[0]) % m.NBlock[1]
	loc[2] = gid / (m.NBlock[0] * m.NBlock[1])
	return
}

func (m *Mesh) newBlock(gid int) (b *MeshBlock) {
	var (
		cfg = m.Config
		ng  = cfg.NGhost
	)
	lid, _, rank := m.Partition.GetLocalK(gid)
	b = &MeshBlock{
		GID: gid, LID: lid, Rank: rank,
		Loc:    m.locOf(gid),
		Nx1:    cfg.BlockNx[0],
		Nx2:    cfg.BlockNx[1],
		Nx3:    cfg.BlockNx[2],
		NGhost: ng,
		Mesh:   m,
	}
	b.Is, b.Ie = ng, ng+b.Nx1-1
	b.Ni = b.Nx1 + 2*ng
	b.Nj, b.Nk = 1, 1
	if b.Nx2 > 1 {
		b.Js, b.Je = ng, ng+b.Nx2-1
		b.Nj = b.Nx2 + 2*ng
	}
	if b.Nx3 > 1 {
		b.Ks, b.Ke = ng, ng+b.Nx3-1
		b.Nk = b.Nx3 + 2*ng
	}
	b.U = NewArray(NHydro, b.Nk, b.Nj, b.Ni)
	if cfg.MagneticFields {
		b.B = NewInterfaceField(1, b.Nk, b.Nj, b.Ni)
		if b.Nx2 > 1 {
			b.E = NewEdgeFlux(b.Nk, b.Nj, b.Ni)
		}
	}
	return
}

func (m *Mesh) connect(b *MeshBlock) {
	nd := b.ActiveDirections()
	for d := types.Direction(0); d < types.NumDirections; d++ {
		b.Neighbor[d] = NoNeighbor()
		b.BlockBCs[d] = m.BCs[d]
		if int(d) >= nd {
			continue
		}
		var (
			a       = d.Axis()
			loc     = b.Loc
			wrapped bool
		)
		if d.IsInner() {
			loc[a]--
		} else {
			loc[a]++
		}
		if loc[a] < 0 || loc[a] >= m.NBlock[a] {
			if m.BCs[d] != types.BC_Periodic {
				continue
			}
			loc[a] = (loc[a] + m.NBlock[a]) % m.NBlock[a]
			wrapped = true
		}
		nb := m.Blocks[m.gidOf(loc)]
		if nb.Rank == b.Rank {
			b.Neighbor[d] = LocalNeighbor(nb.GID, nb.LID, nb.Rank)
		} else {
			b.Neighbor[d] = RemoteNeighbor(nb.GID, nb.LID, nb.Rank)
		}
		b.Neighbor[d].Periodic = wrapped
		if wrapped {
			b.BlockBCs[d] = types.BC_Periodic
		} else {
			b.BlockBCs[d] = types.BC_Block
		}
	}
}

func (m *Mesh) Block(gid int) *MeshBlock { return m.Blocks[gid] }

// RankBlocks returns the blocks owned by rank, ordered by LID.
func (m *Mesh) RankBlocks(rank int) []*MeshBlock {
	kMin, kMax := m.Partition.GetBucketRange(rank)
	return m.Blocks[kMin:kMax]
}

func (m *Mesh) NumBlocks() int { return len(m.Blocks) }

func (b *MeshBlock) ActiveDirections() int {
	return types.ActiveDirections(b.Nx2, b.Nx3)
}

// GlobalIndex maps a storage index of the block, ghosts included, to the
// global cell index on the mesh. Ghost cells map outside [0, Nx) and are not
// wrapped. Collapsed axes map to 0.
func (b *MeshBlock) GlobalIndex(k, j, i int) (gk, gj, gi int) {
	gi = b.Loc[0]*b.Nx1 + (i - b.Is)
	if b.Nx2 > 1 {
		gj = b.Loc[1]*b.Nx2 + (j - b.Js)
	}
	if b.Nx3 > 1 {
		gk = b.Loc[2]*b.Nx3 + (k - b.Ks)
	}
	return
}

func (b *MeshBlock) String() string {
	return fmt.Sprintf("MeshBlock{gid=%d lid=%d rank=%d loc=%v}", b.GID, b.LID, b.Rank, b.Loc)
}
