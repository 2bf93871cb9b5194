package smd

import (
	"math"
	"testing"

	"github.com/ChristopherRabotin/scicxx/kepler"
	"github.com/gonum/floats"
)

func TestOrbitRV2COE(t *testing.T) {
	R := []float64{6524.834, 6862.875, 6448.296}
	V := []float64{4.901327, 5.533756, -1.976341}
	o := NewOrbitFromRV(R, V, Earth)
	oT := NewOrbitFromOE(36127.343, 0.832853, 87.869126, 227.898260, 53.384931, 92.335157, Earth)
	if ok, err := o.StrictlyEquals(*oT); !ok {
		t.Logf("\no0: %s\no1: %s", o, oT)
		t.Fatalf("orbits differ: %s", err)
	}
	if ok, err := anglesEqual(Deg2rad(281.283201), o.Tildeω()); !ok {
		t.Fatalf("longitude of periapsis invalid: %s (%f)", err, o.Tildeω())
	}
	if ok, err := anglesEqual(Deg2rad(145.720695), o.ArgLatitudeU()); !ok {
		t.Fatalf("argument of latitude invalid: %s (%f)", err, o.ArgLatitudeU())
	}
	valladoε := 1e-6
	if !floats.EqualWithinAbs(o.Energyξ(), -5.516604, valladoε) {
		t.Fatalf("incorrect energy ξ=%f", o.Energyξ())
	}
	if !floats.EqualWithinAbs(norm(o.R()), o.RNorm(), valladoε) {
		t.Fatalf("incorrect r norm |R|=%f\tr=%f", norm(o.R()), o.RNorm())
	}
	if !floats.EqualWithinAbs(norm(o.V()), o.VNorm(), valladoε) {
		t.Fatalf("incorrect v norm |V|=%f\tv=%f", norm(o.V()), o.VNorm())
	}
	if !floats.EqualWithinAbs(norm(o.H()), o.HNorm(), valladoε) {
		t.Fatalf("incorrect h norm |h|=%f\th=%f", norm(o.H()), o.HNorm())
	}
	// TrueLongλ is ω+Ω+ν modulo a full turn: 53.384931+227.898260+92.335157-360 degrees.
	if ok, err := anglesEqual(Deg2rad(13.618348), o.TrueLongλ()); !ok {
		t.Fatalf("true longitude invalid: %s (%f)", err, o.TrueLongλ())
	}
}

func TestOrbitCOE2RV(t *testing.T) {
	a0 := 36126.64283
	e0 := 0.83280
	i0 := 87.874925
	ω0 := 53.378089
	Ω0 := 227.891253
	ν0 := 92.335027
	R := []float64{6524.344, 6861.535, 6449.125}
	V := []float64{4.902276, 5.533124, -1.975709}

	o0 := NewOrbitFromOE(a0, e0, i0, Ω0, ω0, ν0, Earth)
	if !vectorsEqual(R, o0.R()) {
		t.Fatalf("R vector incorrectly computed:\n%+v\n%+v", R, o0.R())
	}
	if !vectorsEqual(V, o0.V()) {
		t.Fatal("V vector incorrectly computed")
	}

	o1 := NewOrbitFromRV(R, V, Earth)
	if ok, err := o0.Equals(*o1); !ok {
		t.Logf("\no0: %s\no1: %s", o0, o1)
		t.Fatal(err)
	}
	if ok, err := anglesEqual(Deg2rad(ν0), o1.ν); !ok {
		t.Fatalf("true anomaly invalid: %s", err)
	}
}

func TestOrbitEquality(t *testing.T) {
	oInit := NewOrbitFromOE(226090298.679, 0.088, 26.195, 3.516, 326.494, 278.358, Sun)
	oTest := NewOrbitFromOE(226090290.608, 0.088, 26.195, 3.516, 326.494, 278.358, Sun)
	if ok, err := oInit.Equals(*oTest); !ok {
		t.Fatalf("orbits not equal: %s", err)
	}
	oTest.ω += math.Pi / 6
	if ok, _ := oInit.Equals(*oTest); ok {
		t.Fatalf("orbits of different ω are equal")
	}
	oTest.ω -= math.Pi / 6 // Reset
	oTest.Origin = Earth
	if ok, _ := oInit.Equals(*oTest); ok {
		t.Fatalf("orbits of different origins are equal")
	}
}

func TestRadii2ae(t *testing.T) {
	a, e := Radii2ae(4, 2)
	if !floats.EqualWithinAbs(a, 3.0, 1e-12) {
		t.Fatalf("a=%f instead of 3.0", a)
	}
	if !floats.EqualWithinAbs(e, 1/3.0, 1e-12) {
		t.Fatalf("e=%f instead of 1/3", e)
	}
	assertPanic(t, func() {
		Radii2ae(1, 2)
	})
}

func TestOrbitΦfpa(t *testing.T) {
	for _, e := range []float64{0.5, 1, 0} {
		for _, ν := range []float64{-120, 120} {
			o := NewOrbitFromOE(1e4, e, 1, 1, 1, ν, Earth)
			Φ := math.Atan2(o.SinΦfpa(), o.CosΦfpa())
			exp := (ν * e) / 2
			if exp < 0 {
				exp += 360
			}
			if (e != 0 && sign(Φ) != sign(ν)) || !floats.EqualWithinAbs(Rad2deg(Φ), exp, angleε) {
				t.Fatalf("Φ = %f (%f) != %f for e=%f with ν=%f", Rad2deg(Φ), Φ, exp, e, ν)
			}
		}
	}
}

func TestOrbitEccentricAnomaly(t *testing.T) {
	o := NewOrbitFromOE(9567205.5, 0.999, 1, 1, 1, 60, Earth)
	sinE, cosE := o.SinCosE()
	E0 := math.Acos(cosE)
	E1 := math.Asin(sinE)
	E2 := math.Atan2(sinE, cosE)
	if !floats.EqualWithinAbs(E2, E0, angleε) || !floats.EqualWithinAbs(E2, E1, angleε) || !floats.EqualWithinAbs(E2, Deg2rad(1.479658), angleε) {
		t.Fatal("specific value of E incorrect")
	}
	for ν := 0.0; ν < 360.0; ν += 0.1 {
		o1 := NewOrbitFromOE(1e5, 0.2, 1, 1, 1, 60, Earth)
		sinE, cosE = o1.SinCosE()
		sinν := sinE * math.Sqrt(1-math.Pow(o1.e, 2)) / (1 - o1.e*cosE)
		cosν := (cosE - o1.e) / (1 - o1.e*cosE)
		ν0 := math.Acos(cosν)
		ν1 := math.Asin(sinν)
		ν2 := math.Atan2(sinν, cosν)
		if !floats.EqualWithinAbs(ν2, ν0, angleε) || !floats.EqualWithinAbs(ν2, ν1, angleε) || !floats.EqualWithinAbs(ν2, o1.ν, angleε) {
			t.Fatalf("computing E failed on ν=%f (cosE=%f\tsinE=%f\tν'=%f')", ν, cosE, sinE, ν0)
		}
	}
}

func TestKeplerianCompleteFromA(t *testing.T) {
	k := NewKeplerian("ECI", 2451545.0, Earth.μ, 7000, 0.01, Deg2rad(51.6), Deg2rad(30), Deg2rad(10), Deg2rad(0))
	if math.IsNaN(k.Q) || math.IsNaN(k.T) {
		t.Fatal("NewKeplerian should have populated both q and T")
	}
	if !floats.EqualWithinAbs(k.semiMajorAxis(), 7000, 1e-6) {
		t.Fatalf("a round-trip failed: got %f", k.semiMajorAxis())
	}
}

func TestKeplerianCompleteFromQAndT(t *testing.T) {
	fromA := NewKeplerian("ECI", 2451545.0, Earth.μ, 7000, 0.01, 0, 0, 0, 0)

	kq := &Keplerian{RefPlane: "ECI", Epoch: 2451545.0, μ: Earth.μ, Q: fromA.Q, E: 0.01, T: math.NaN()}
	if err := kq.Complete(); err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(kq.T, fromA.T, 1e-6) {
		t.Fatalf("T from q mismatch: got %f want %f", kq.T, fromA.T)
	}

	kt := &Keplerian{RefPlane: "ECI", Epoch: 2451545.0, μ: Earth.μ, T: fromA.T, E: 0.01, Q: math.NaN()}
	if err := kt.Complete(); err != nil {
		t.Fatal(err)
	}
	if !floats.EqualWithinAbs(kt.Q, fromA.Q, 1e-6) {
		t.Fatalf("q from T mismatch: got %f want %f", kt.Q, fromA.Q)
	}
}

func TestKeplerianCompleteRejectsUnderspecified(t *testing.T) {
	k := &Keplerian{RefPlane: "ECI", Epoch: 2451545.0, μ: Earth.μ, E: 0.01, Q: math.NaN(), T: math.NaN()}
	if err := k.Complete(); err == nil {
		t.Fatal("expected error when neither q nor T is set")
	}
}

func TestKeplerianToOrbitRoundTrip(t *testing.T) {
	o0 := NewOrbitFromOE(36126.64283, 0.8328, 87.874925, 227.891253, 53.378089, 92.335027, Earth)
	sinHalf, cosHalf := math.Sincos(o0.ν / 2)
	E := 2 * math.Atan2(math.Sqrt(1-o0.e)*sinHalf, math.Sqrt(1+o0.e)*cosHalf)
	M := kepler.ForwardElliptic(o0.e, E)
	k := NewKeplerian("ECI", 2451545.0, Earth.μ, o0.a, o0.e, o0.i, o0.Ω, o0.ω, M)
	o1, err := k.ToOrbit(Earth)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := o0.StrictlyEquals(*o1); !ok {
		t.Fatalf("round trip through Keplerian diverged: %s", err)
	}
}

func TestOrbitStateToOrbit(t *testing.T) {
	R := []float64{6524.834, 6862.875, 6448.296}
	V := []float64{4.901327, 5.533756, -1.976341}
	s := NewOrbitStateFromRV("ECI", Earth.μ, 2451545.0, R, V)
	o := s.ToOrbit(Earth)
	direct := NewOrbitFromRV(R, V, Earth)
	if ok, err := o.StrictlyEquals(*direct); !ok {
		t.Fatalf("OrbitState.ToOrbit diverged from NewOrbitFromRV: %s", err)
	}
}
