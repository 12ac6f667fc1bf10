package msd

import (
	"errors"
	"testing"

	"github.com/spinsim/msd/internal/vec"
)

func testGeometry() Geometry {
	return Geometry{
		Width: 11, Height: 10, Depth: 10,
		MolPosL: 4, MolPosR: 6,
		TopL: 2, BottomL: 7,
		FrontR: 3, BackR: 6,
	}
}

// inRegion classifies a coordinate straight from the region
// definitions, independent of the enumeration code.
func inRegion(g Geometry, x, y, z int) (Region, bool) {
	yIn := g.TopL <= y && y <= g.BottomL
	zIn := g.FrontR <= z && z <= g.BackR
	switch {
	case x < g.MolPosL:
		return RegionL, yIn
	case x > g.MolPosR:
		return RegionR, zIn
	default:
		ring := ((y == g.TopL || y == g.BottomL) && zIn) ||
			((z == g.FrontR || z == g.BackR) && yIn)
		return RegionM, ring
	}
}

func TestPartitionExhaustive(t *testing.T) {
	g := testGeometry()
	lat := New(g)

	var nL, nR, nM int
	for z := 0; z < g.Depth; z++ {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				a := lat.Index(x, y, z)
				want, occupied := inRegion(g, x, y, z)
				if lat.HasSite(a) != occupied {
					t.Fatalf("site (%d,%d,%d): HasSite=%v, want %v", x, y, z, lat.HasSite(a), occupied)
				}
				if !occupied {
					if _, err := lat.Region(a); !errors.Is(err, ErrSite) {
						t.Fatalf("unoccupied (%d,%d,%d): Region err = %v", x, y, z, err)
					}
					continue
				}
				got, err := lat.Region(a)
				if err != nil || got != want {
					t.Fatalf("site (%d,%d,%d): region %v (err %v), want %v", x, y, z, got, err, want)
				}
				switch want {
				case RegionL:
					nL++
				case RegionR:
					nR++
				case RegionM:
					nM++
				}
			}
		}
	}

	c := lat.Counts()
	if c.NL != nL || c.NR != nR || c.Nm != nM {
		t.Errorf("counts L=%d R=%d m=%d, want %d %d %d", c.NL, c.NR, c.Nm, nL, nR, nM)
	}
	if c.N != nL+nR+nM {
		t.Errorf("N=%d, want %d", c.N, nL+nR+nM)
	}
	if len(lat.Sites()) != c.N {
		t.Errorf("enumerated %d sites, count says %d", len(lat.Sites()), c.N)
	}
}

// Interface counts tally bond endpoints, so each must equal the number
// of bonds in that bucket counted by walking every site's bonds.
func TestInterfaceCounts(t *testing.T) {
	lat := New(testGeometry())
	g := lat.Geometry()

	// Interface counts tally endpoint sites by column, whether or not
	// a partner site exists across the gap.
	var nmL, nmR, nLR int
	for _, a := range lat.sites {
		x, _, _ := lat.Coords(a)
		if x+1 == g.MolPosL {
			nmL++
			nLR++
		}
		if x == g.MolPosL {
			nmL++
		}
		if x == g.MolPosR {
			nmR++
		}
		if x-1 == g.MolPosR {
			nmR++
			nLR++
		}
	}
	c := lat.Counts()
	if c.NmL != nmL || c.NmR != nmR || c.NLR != nLR {
		t.Errorf("counts NmL=%d NmR=%d NLR=%d, site walk says %d %d %d",
			c.NmL, c.NmR, c.NLR, nmL, nmR, nLR)
	}

	// The windows differ, so some lead rows face no molecule row and
	// the tallies exceed twice the bonds crossing each interface.
	bonds := map[Region]int{}
	for _, a := range lat.sites {
		lat.eachBond(a, func(b int, _ *bondCoeffs, bucket Region) {
			if b > a {
				bonds[bucket]++
			}
		})
	}
	if 2*bonds[RegionML] >= c.NmL {
		t.Errorf("NmL=%d does not exceed 2x%d bonds", c.NmL, bonds[RegionML])
	}
	if 2*bonds[RegionMR] >= c.NmR {
		t.Errorf("NmR=%d does not exceed 2x%d bonds", c.NmR, bonds[RegionMR])
	}
}

// Every bond must be visible from both endpoints with the same
// coupling set and bucket.
func TestBondSymmetry(t *testing.T) {
	lat := New(testGeometry())
	lat.SetParameters(denseParameters())

	type bond struct {
		c      bondCoeffs
		bucket Region
	}
	seen := map[[2]int][]bond{}
	for _, a := range lat.sites {
		lat.eachBond(a, func(b int, c *bondCoeffs, bucket Region) {
			key := [2]int{min(a, b), max(a, b)}
			seen[key] = append(seen[key], bond{*c, bucket})
		})
	}
	for key, list := range seen {
		if len(list)%2 != 0 {
			t.Fatalf("bond %v visited %d times", key, len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i] != list[0] {
				t.Fatalf("bond %v disagrees between endpoints: %+v vs %+v", key, list[0], list[i])
			}
		}
	}
}

func TestBoundsNormalization(t *testing.T) {
	lat := New(Geometry{
		Width: 0, Height: 0, Depth: 0,
		MolPosL: 5, MolPosR: 9,
		TopL: 3, BottomL: 8,
		FrontR: 4, BackR: 9,
	})
	g := lat.Geometry()
	if g.Width != 1 || g.Height != 1 || g.Depth != 1 {
		t.Errorf("dims = %dx%dx%d, want 1x1x1", g.Width, g.Height, g.Depth)
	}
	if g.MolPosR >= g.Width || g.MolPosR >= g.MolPosL {
		t.Errorf("mol bounds = [%d,%d] in width %d", g.MolPosL, g.MolPosR, g.Width)
	}
	if lat.Counts().Nm != 0 {
		t.Errorf("collapsed molecule has %d sites", lat.Counts().Nm)
	}
}

func TestFullGeometryDefaults(t *testing.T) {
	lat := New(FullGeometry(10, 5, 5))
	g := lat.Geometry()
	if g.MolPosL != 4 || g.MolPosR != 5 {
		t.Errorf("mol columns = [%d,%d], want [4,5]", g.MolPosL, g.MolPosR)
	}
	c := lat.Counts()
	// Full windows fill the lead columns completely.
	if c.NL != 4*5*5 || c.NR != 4*5*5 {
		t.Errorf("lead counts %d/%d, want %d each", c.NL, c.NR, 4*5*5)
	}
	// Molecule sites exist only on the window ring: the 5x5
	// cross-section's border has 16 positions, across two columns.
	if c.Nm != 2*16 {
		t.Errorf("Nm = %d, want %d", c.Nm, 2*16)
	}
	if c.N != c.NL+c.NR+c.Nm {
		t.Errorf("N = %d, want %d", c.N, c.NL+c.NR+c.Nm)
	}
}

func TestSetLocalMBufferZone(t *testing.T) {
	lat := New(testGeometry())
	// (0,0,0) sits outside the left lead's y window.
	a := lat.Index(0, 0, 0)
	before := lat.Results()
	if err := lat.SetLocalM(a, vec.J, vec.Zero); !errors.Is(err, ErrSite) {
		t.Fatalf("buffer zone write err = %v", err)
	}
	if lat.Results() != before {
		t.Fatal("failed write changed results")
	}
}

func TestInitialState(t *testing.T) {
	lat := New(testGeometry())
	r := lat.Results()
	// Default parameters point every spin along +y with magnitude 1.
	wantM := vec.J.Scale(float64(lat.Counts().N))
	if r.MS != wantM || r.M != wantM {
		t.Errorf("MS = %v, want %v", r.MS, wantM)
	}
	if r.MF != vec.Zero {
		t.Errorf("MF = %v, want zero", r.MF)
	}
	if r.T != 0 {
		t.Errorf("T = %d, want 0", r.T)
	}
	if err := lat.CheckConsistency(1e-12); err != nil {
		t.Errorf("fresh lattice inconsistent: %v", err)
	}
}

func TestCoordsRoundTrip(t *testing.T) {
	lat := New(testGeometry())
	for _, a := range lat.sites {
		x, y, z := lat.Coords(a)
		if lat.Index(x, y, z) != a {
			t.Fatalf("index %d -> (%d,%d,%d) -> %d", a, x, y, z, lat.Index(x, y, z))
		}
	}
}
