package smd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"

	"github.com/ChristopherRabotin/scicxx/kepler"
	"github.com/ChristopherRabotin/scicxx/serr"
)

// Keplerian is the orbital element set of a Keplerian orbit: reference
// plane, epoch, the pericenter distance and period rather than a and e
// alone, and mean anomaly rather than true. Fields left unset by a
// constructor are math.NaN(); Complete fills the mutually-derivable
// subset (q<->a, T<->μ) without reading a field it hasn't first
// checked for NaN.
type Keplerian struct {
	RefPlane string  // e.g. "ECI", "ECLIPJ2000"
	Epoch    float64 // Julian day
	μ        float64
	Q        float64 // pericenter distance
	T        float64 // period, seconds; undefined (NaN) for e == 1
	E        float64
	I        float64 // radians
	Ω        float64 // radians
	ω        float64 // radians
	M        float64 // mean anomaly, radians
}

// NewKeplerian builds a Keplerian element set from a semi-major axis and
// fills in q and T from it.
func NewKeplerian(refPlane string, epoch, μ, a, e, i, Ω, ω, M float64) *Keplerian {
	k := &Keplerian{RefPlane: refPlane, Epoch: epoch, μ: μ, E: e, I: i, Ω: Ω, ω: ω, M: M, Q: math.NaN(), T: math.NaN()}
	k.setFromA(a)
	return k
}

func (k *Keplerian) setFromA(a float64) {
	k.Q = a * (1 - k.E)
	if k.E == 1 {
		k.T = math.NaN() // period undefined at e==1; semi-latus rectum p = 2q stands in for a
	} else {
		k.T = 2 * math.Pi * math.Sqrt(math.Abs(math.Pow(a, 3)/k.μ))
	}
}

// semiMajorAxis recovers a from q and e (q = a(1-e)).
func (k Keplerian) semiMajorAxis() float64 {
	return k.Q / (1 - k.E)
}

// Complete fills whichever of {q, T} is still NaN from the other and
// from μ. A field is never consumed before it has been checked for NaN.
func (k *Keplerian) Complete() error {
	if k.μ <= 0 {
		return fmt.Errorf("%w: μ must be positive, got %f", serr.ErrInvalidArgument, k.μ)
	}
	if k.E < 0 {
		return fmt.Errorf("%w: e must be >= 0, got %f", serr.ErrInvalidArgument, k.E)
	}
	qSet := !math.IsNaN(k.Q)
	tSet := !math.IsNaN(k.T)
	switch {
	case qSet && !tSet:
		if k.E == 1 {
			k.T = math.NaN() // period undefined at e==1; semi-latus rectum p = 2q stands in for a
			return nil
		}
		a := k.Q / (1 - k.E)
		k.T = 2 * math.Pi * math.Sqrt(math.Abs(math.Pow(a, 3)/k.μ))
	case tSet && !qSet:
		if k.E == 1 {
			return fmt.Errorf("%w: cannot derive q from T at e==1", serr.ErrInvalidArgument)
		}
		a := math.Cbrt(k.μ * math.Pow(k.T/(2*math.Pi), 2))
		if k.E > 1 {
			a = -a // hyperbolic: a < 0
		}
		k.Q = a * (1 - k.E)
	case !qSet && !tSet:
		return fmt.Errorf("%w: neither q nor T is set", serr.ErrInvalidArgument)
	}
	return nil
}

// Anomalies inverts Kepler's equation for the mean anomaly M and
// returns the eccentric/hyperbolic anomaly and the true anomaly,
// dispatching to the appropriate scicxx/kepler solver for the conic
// regime (e<1, e==1, e>1).
func (k Keplerian) Anomalies() (eccentric, trueAnomaly float64, err error) {
	switch {
	case k.E < 1:
		s := &kepler.EllipticSolver{E: k.E}
		E, solveErr := s.Solve(k.M)
		if solveErr != nil {
			return 0, 0, solveErr
		}
		sinHalf, cosHalf := math.Sincos(E / 2)
		return E, 2 * math.Atan2(math.Sqrt(1+k.E)*sinHalf, math.Sqrt(1-k.E)*cosHalf), nil
	case k.E == 1:
		s := kepler.ParabolicSolver{}
		B, solveErr := s.Solve(k.M)
		if solveErr != nil {
			return 0, 0, solveErr
		}
		return B, 2 * math.Atan(B), nil
	default:
		s := &kepler.HyperbolicSolver{E: k.E}
		H, solveErr := s.Solve(k.M)
		if solveErr != nil {
			return 0, 0, solveErr
		}
		sinhHalf, coshHalf := math.Sinh(H/2), math.Cosh(H/2)
		return H, 2 * math.Atan2(math.Sqrt(k.E+1)*sinhHalf, math.Sqrt(k.E-1)*coshHalf), nil
	}
}

// ToOrbit converts this element set to an Orbit around the given
// celestial object, inverting the mean anomaly to true anomaly first.
func (k Keplerian) ToOrbit(c CelestialObject) (*Orbit, error) {
	_, ν, err := k.Anomalies()
	if err != nil {
		return nil, err
	}
	a := k.semiMajorAxis()
	return NewOrbitFromOE(a, k.E, Rad2deg(k.I), Rad2deg(k.Ω), Rad2deg(k.ω), Rad2deg(ν), c), nil
}

// OrbitState is a plain orbit-state-vectors entity: reference plane,
// μ, a Julian-date epoch, and the R and V vectors. It is the output
// type of lambert's per-branch solve and an alternate input to
// NewOrbitFromRV.
type OrbitState struct {
	RefPlane string
	μ        float64
	JD       float64
	R        []float64
	V        []float64
}

// NewOrbitStateFromRV builds an OrbitState from Cartesian vectors.
func NewOrbitStateFromRV(refPlane string, μ, jd float64, R, V []float64) OrbitState {
	return OrbitState{RefPlane: refPlane, μ: μ, JD: jd, R: R, V: V}
}

// ToOrbit converts the state vectors to orbital elements around c.
// The caller is responsible for c.GM() matching s.μ; mismatches are
// not checked since OrbitState is plane-agnostic and c carries the
// authoritative μ used downstream.
func (s OrbitState) ToOrbit(c CelestialObject) *Orbit {
	return NewOrbitFromRV(s.R, s.V, c)
}

// TLE is a parsed NORAD two-line element set: two fixed-width
// 69-column text lines describing a near-Earth orbit.
type TLE struct {
	NoradID  string
	Epoch    float64 // Julian day
	BStar    float64 // drag term, earth radii^-1
	Elements Keplerian
}

// tleExpField parses the assumed-decimal-point, signed-exponent format
// NORAD packs the drag terms in, e.g. " 12345-3" -> 0.12345e-3.
func tleExpField(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" || field == "00000-0" || field == "0" {
		return 0, nil
	}
	sign := 1.0
	if field[0] == '-' {
		sign = -1
		field = field[1:]
	} else if field[0] == '+' {
		field = field[1:]
	}
	splitAt := strings.LastIndexAny(field, "+-")
	if splitAt < 0 {
		v, err := strconv.ParseFloat("0."+field, 64)
		return sign * v, err
	}
	mantissa, err := strconv.ParseFloat("0."+field[:splitAt], 64)
	if err != nil {
		return 0, err
	}
	exp, err := strconv.Atoi(field[splitAt:])
	if err != nil {
		return 0, err
	}
	return sign * mantissa * math.Pow(10, float64(exp)), nil
}

// ParseTLE parses a two-line element set (the two 69-column data
// lines; an optional leading name/title line is not accepted here).
// Column offsets follow the public NORAD TLE fixed-width layout.
func ParseTLE(line1, line2 string, c CelestialObject) (*TLE, error) {
	if len(line1) < 69 || len(line2) < 69 {
		return nil, fmt.Errorf("%w: TLE lines must be 69 columns, got %d and %d", serr.ErrInvalidArgument, len(line1), len(line2))
	}
	if line1[0] != '1' || line2[0] != '2' {
		return nil, fmt.Errorf("%w: expected line numbers '1' and '2'", serr.ErrInvalidArgument)
	}

	noradID := strings.TrimSpace(line1[2:7])
	if strings.TrimSpace(line2[2:7]) != noradID {
		return nil, fmt.Errorf("%w: satellite number mismatch between lines (%s != %s)", serr.ErrInvalidArgument, noradID, strings.TrimSpace(line2[2:7]))
	}

	epochYear, err := strconv.Atoi(strings.TrimSpace(line1[18:20]))
	if err != nil {
		return nil, fmt.Errorf("epoch year: %w", err)
	}
	epochDay, err := strconv.ParseFloat(strings.TrimSpace(line1[20:32]), 64)
	if err != nil {
		return nil, fmt.Errorf("epoch day: %w", err)
	}
	fullYear := epochYear + 1900
	if epochYear < 57 {
		fullYear = epochYear + 2000
	}
	epochTime := time.Date(fullYear, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration((epochDay - 1) * float64(24*time.Hour)))
	epochJD := julian.TimeToJD(epochTime)

	bstar, err := tleExpField(line1[53:61])
	if err != nil {
		return nil, fmt.Errorf("bstar: %w", err)
	}

	incl, err := strconv.ParseFloat(strings.TrimSpace(line2[8:16]), 64)
	if err != nil {
		return nil, fmt.Errorf("inclination: %w", err)
	}
	raan, err := strconv.ParseFloat(strings.TrimSpace(line2[17:25]), 64)
	if err != nil {
		return nil, fmt.Errorf("RAAN: %w", err)
	}
	eccStr := strings.TrimSpace(line2[26:33])
	ecc, err := strconv.ParseFloat("0."+eccStr, 64)
	if err != nil {
		return nil, fmt.Errorf("eccentricity: %w", err)
	}
	argp, err := strconv.ParseFloat(strings.TrimSpace(line2[34:42]), 64)
	if err != nil {
		return nil, fmt.Errorf("argument of perigee: %w", err)
	}
	meanAnom, err := strconv.ParseFloat(strings.TrimSpace(line2[43:51]), 64)
	if err != nil {
		return nil, fmt.Errorf("mean anomaly: %w", err)
	}
	meanMotion, err := strconv.ParseFloat(strings.TrimSpace(line2[52:63]), 64)
	if err != nil {
		return nil, fmt.Errorf("mean motion: %w", err)
	}
	if meanMotion <= 0 {
		return nil, fmt.Errorf("%w: mean motion must be positive, got %f", serr.ErrDomainError, meanMotion)
	}

	period := 86400 / meanMotion // seconds per day / revs per day
	a := math.Cbrt(c.μ * math.Pow(period/(2*math.Pi), 2))

	k := Keplerian{
		RefPlane: "TEME",
		Epoch:    epochJD,
		μ:        c.μ,
		E:        ecc,
		I:        Deg2rad(incl),
		Ω:        Deg2rad(raan),
		ω:        Deg2rad(argp),
		M:        Deg2rad(meanAnom),
	}
	k.setFromA(a)
	return &TLE{NoradID: noradID, Epoch: epochJD, BStar: bstar, Elements: k}, nil
}
