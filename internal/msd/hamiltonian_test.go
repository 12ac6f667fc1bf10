package msd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/spinsim/msd/internal/vec"
)

// denseParameters turns on every coupling so no term escapes the
// recompute-equivalence checks.
func denseParameters() Parameters {
	p := DefaultParameters()
	p.KT = 0.3
	p.B = vec.Vec3{X: 0.1, Y: -0.05, Z: 0.2}
	p.SL, p.SR, p.Sm = 1, 1.25, 0.75
	p.FL, p.FR, p.Fm = 0.5, 0.25, 0.5
	p.JL, p.JR, p.Jm, p.JmL, p.JmR, p.JLR = 1, 0.8, 0.4, 0.9, -0.9, 0.05
	p.Je0L, p.Je0R, p.Je0m = 0.2, 0.1, 0.15
	p.Je1L, p.Je1R, p.Je1m, p.Je1mL, p.Je1mR, p.Je1LR = 0.1, 0.05, 0.02, 0.03, -0.03, 0.01
	p.JeeL, p.JeeR, p.Jeem, p.JeemL, p.JeemR, p.JeeLR = 0.05, 0.04, 0.03, 0.02, 0.02, 0.005
	p.BqL, p.BqR, p.Bqm, p.BqmL, p.BqmR, p.BqLR = 0.1, -0.05, 0.08, 0.04, -0.04, 0.01
	p.AL = vec.Vec3{X: 0.1, Z: 0.05}
	p.AR = vec.Vec3{Y: 0.2}
	p.Am = vec.Vec3{X: 0.05, Y: 0.05, Z: 0.05}
	p.DL = vec.Vec3{Z: 0.1}
	p.DR = vec.Vec3{X: 0.05}
	p.Dm = vec.Vec3{Y: 0.08}
	p.DmL = vec.Vec3{Z: -0.06}
	p.DmR = vec.Vec3{X: 0.04, Y: 0.02}
	p.DLR = vec.Vec3{Z: 0.02}
	return p
}

func randomUnit(rng *rand.Rand) vec.Vec3 {
	return vec.Spherical(1, 2*math.Pi*rng.Float64(), math.Asin(2*rng.Float64()-1))
}

// scrambles the device through the incremental path only.
func scramble(t *testing.T, lat *Lattice, rng *rand.Rand, writes int) {
	t.Helper()
	sites := lat.sites
	for i := 0; i < writes; i++ {
		a := sites[rng.Intn(len(sites))]
		x, _, _ := lat.Coords(a)
		s, _ := lat.Spin(a)
		spin := randomUnit(rng).Scale(s.Norm())
		flux := randomUnit(rng).Scale(lat.maxFlux(x) * rng.Float64())
		if err := lat.SetLocalM(a, spin, flux); err != nil {
			t.Fatalf("write %d to site %d: %v", i, a, err)
		}
	}
}

func TestRecomputeEquivalence(t *testing.T) {
	lat := New(testGeometry())
	lat.SetParameters(denseParameters())

	rng := rand.New(rand.NewSource(42))
	scramble(t, lat, rng, 2000)

	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
}

func TestRecomputeEquivalenceSingleColumn(t *testing.T) {
	// Molecule and both interfaces collapse onto one column.
	g := testGeometry()
	g.MolPosR = g.MolPosL
	lat := New(g)
	lat.SetParameters(denseParameters())

	rng := rand.New(rand.NewSource(7))
	scramble(t, lat, rng, 1000)

	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
}

func TestRecomputeEquivalenceNoMolecule(t *testing.T) {
	g := testGeometry()
	g.MolPosL = 5
	g.MolPosR = 4 // empty molecule, leads couple directly
	lat := New(g)
	if lat.hasMol {
		t.Fatal("expected no molecule region")
	}
	if lat.Counts().NLR == 0 {
		t.Fatal("expected direct lead-lead bonds")
	}
	lat.SetParameters(denseParameters())

	rng := rand.New(rand.NewSource(11))
	scramble(t, lat, rng, 1000)

	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
}

func TestRightInterfacePartner(t *testing.T) {
	// Two molecule columns, no prototype: the right lead must bond to
	// column MolPosR, mirroring the bond the molecule side reports.
	lat := New(FullGeometry(6, 3, 3))
	lat.SetParameters(denseParameters())
	g := lat.geom
	if g.MolPosL == g.MolPosR {
		t.Fatalf("geometry %+v does not span two columns", g)
	}

	a := lat.Index(g.MolPosR+1, 0, 1)
	want := lat.Index(g.MolPosR, 0, 1)
	found := false
	lat.eachBond(a, func(b int, _ *bondCoeffs, bucket Region) {
		if bucket != RegionMR {
			return
		}
		if b != want {
			t.Fatalf("right interface bonds to site %d, want %d", b, want)
		}
		found = true
	})
	if !found {
		t.Fatal("no molecule bond from the right interface site")
	}

	if err := lat.SetLocalM(lat.Index(g.MolPosL, 0, 1), vec.I, vec.Zero); err != nil {
		t.Fatal(err)
	}
	if err := lat.SetLocalM(a, vec.K, vec.Zero); err != nil {
		t.Fatal(err)
	}
	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
}

// two mol sites, nothing else: FullGeometry(2,1,1) has no leads.
func twoSiteMol(t *testing.T, p Parameters) *Lattice {
	t.Helper()
	lat := New(FullGeometry(2, 1, 1))
	if lat.Counts().Nm != 2 || lat.Counts().NL != 0 || lat.Counts().NR != 0 {
		t.Fatalf("unexpected counts %+v", lat.Counts())
	}
	lat.SetParameters(p)
	return lat
}

func TestDMIOrdering(t *testing.T) {
	p := Parameters{Sm: 1, Dm: vec.K}
	lat := twoSiteMol(t, p)

	if err := lat.SetLocalM(0, vec.I, vec.Zero); err != nil {
		t.Fatal(err)
	}
	if err := lat.SetLocalM(1, vec.J, vec.Zero); err != nil {
		t.Fatal(err)
	}
	// U = -Dm.(m0 x m1) = -k.(i x j) = -1
	if got := lat.Results().U; math.Abs(got-(-1)) > 1e-12 {
		t.Errorf("U = %v, want -1", got)
	}

	// Swapping the two site states must flip the sign, not preserve it.
	lat.SetLocalM(0, vec.J, vec.Zero)
	lat.SetLocalM(1, vec.I, vec.Zero)
	if got := lat.Results().U; math.Abs(got-1) > 1e-12 {
		t.Errorf("U swapped = %v, want 1", got)
	}
	if err := lat.CheckConsistency(1e-12); err != nil {
		t.Error(err)
	}
}

func TestBiquadraticDelta(t *testing.T) {
	p := Parameters{Sm: 1, Bqm: 1}
	lat := twoSiteMol(t, p)

	lat.SetLocalM(0, vec.J, vec.Zero)
	lat.SetLocalM(1, vec.J, vec.Zero)
	// U = -(m0.m1)^2 = -1
	if got := lat.Results().U; math.Abs(got-(-1)) > 1e-12 {
		t.Fatalf("aligned U = %v, want -1", got)
	}

	// Quadratic terms cannot use the linear delta shortcut; rotating
	// one site must still land on the recomputed value.
	lat.SetLocalM(0, vec.Vec3{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, vec.Zero)
	if got := lat.Results().U; math.Abs(got-(-0.5)) > 1e-12 {
		t.Errorf("rotated U = %v, want -0.5", got)
	}
	if err := lat.CheckConsistency(1e-12); err != nil {
		t.Error(err)
	}
}

func TestSetLocalMNoOp(t *testing.T) {
	lat := New(testGeometry())
	lat.SetParameters(denseParameters())
	a := lat.sites[0]
	s, _ := lat.Spin(a)
	f, _ := lat.Flux(a)
	before := lat.Results()
	if err := lat.SetLocalM(a, s, f); err != nil {
		t.Fatal(err)
	}
	if lat.Results() != before {
		t.Error("identical write changed results")
	}
}

func TestSetB(t *testing.T) {
	lat := New(testGeometry())
	lat.SetParameters(denseParameters())
	rng := rand.New(rand.NewSource(3))
	scramble(t, lat, rng, 500)

	lat.SetB(vec.Vec3{X: -0.3, Y: 0.7, Z: 0.1})
	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
	if lat.Parameters().B != (vec.Vec3{X: -0.3, Y: 0.7, Z: 0.1}) {
		t.Errorf("B = %v", lat.Parameters().B)
	}
}

func TestSetParametersRescalesState(t *testing.T) {
	lat := New(testGeometry())
	p := denseParameters()
	lat.SetParameters(p)
	rng := rand.New(rand.NewSource(5))
	scramble(t, lat, rng, 300)

	p2 := p
	p2.SL, p2.SR, p2.Sm = 2, 0.5, 3
	p2.FL = p.FL * 2
	lat.SetParameters(p2)

	for _, a := range lat.sites {
		x, _, _ := lat.Coords(a)
		s, _ := lat.Spin(a)
		var want float64
		switch {
		case x < lat.geom.MolPosL:
			want = 2
		case x > lat.geom.MolPosR:
			want = 0.5
		default:
			want = 3
		}
		if math.Abs(s.Norm()-want) > 1e-12 {
			t.Fatalf("site %d spin norm %v, want %v", a, s.Norm(), want)
		}
	}
	if err := lat.CheckConsistency(1e-9); err != nil {
		t.Fatal(err)
	}
}

func TestZeroFluxCapClearsFlux(t *testing.T) {
	lat := New(testGeometry())
	p := denseParameters()
	lat.SetParameters(p)
	rng := rand.New(rand.NewSource(9))
	scramble(t, lat, rng, 200)

	p2 := p
	p2.FL, p2.FR, p2.Fm = 0, 0, 0
	lat.SetParameters(p2)
	if lat.Results().MF != vec.Zero {
		t.Errorf("MF = %v after zeroing caps", lat.Results().MF)
	}
}
