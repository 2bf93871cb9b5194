package ode

// Tableau bundles an embedded Runge-Kutta method's Butcher coefficients
// (C, A, B, E) and dense-output matrix P. A has Stages rows/cols
// (strictly lower triangular, explicit). E and P carry one extra row
// for the FSAL evaluation at the accepted step's endpoint.
type Tableau struct {
	C          []float64
	A          [][]float64
	B          []float64
	E          []float64   // length Stages+1
	P          [][]float64 // (Stages+1) x DenseOrder
	Stages     int
	ErrorOrder int // q
	StepOrder  int // p
	DenseOrder int
}

// RK23 is the Bogacki-Shampine 2(3) pair: 3 explicit stages plus the
// FSAL evaluation, dense output order 3.
var RK23 = Tableau{
	C: []float64{0, 1.0 / 2, 3.0 / 4},
	A: [][]float64{
		{0, 0, 0},
		{1.0 / 2, 0, 0},
		{0, 3.0 / 4, 0},
	},
	B:          []float64{2.0 / 9, 1.0 / 3, 4.0 / 9},
	E:          []float64{5.0 / 72, -1.0 / 12, -1.0 / 9, 1.0 / 8},
	Stages:     3,
	ErrorOrder: 2,
	StepOrder:  3,
	DenseOrder: 3,
	P: [][]float64{
		{1, -4.0 / 3, 5.0 / 9},
		{0, 1, -2.0 / 3},
		{0, 4.0 / 3, -8.0 / 9},
		{0, -1, 1},
	},
}

// RK45 is the Dormand-Prince 4(5) pair: 6 explicit stages plus the FSAL
// evaluation, dense output order 4. The default engine.
var RK45 = Tableau{
	C: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1},
	A: [][]float64{
		{0, 0, 0, 0, 0},
		{1.0 / 5, 0, 0, 0, 0},
		{3.0 / 40, 9.0 / 40, 0, 0, 0},
		{44.0 / 45, -56.0 / 15, 32.0 / 9, 0, 0},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729, 0},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
	},
	B:          []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	E:          []float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40},
	Stages:     6,
	ErrorOrder: 4,
	StepOrder:  5,
	DenseOrder: 4,
	P: [][]float64{
		{1, -8048581381.0 / 2820520608, 8663915743.0 / 2820520608, -12715105075.0 / 11282082432},
		{0, 0, 0, 0},
		{0, 131558114200.0 / 32700410799, -68118460800.0 / 10900136933, 87487479700.0 / 32700410799},
		{0, -1754552775.0 / 470086768, 14199869525.0 / 1410260304, -10690763975.0 / 1880347072},
		{0, 127303824393.0 / 49829197408, -318862633887.0 / 49829197408, 701980252875.0 / 199316789632},
		{0, -282668133.0 / 205662961, 2019193451.0 / 616988883, -1453857185.0 / 822651844},
		{0, 40617522.0 / 29380423, -110615467.0 / 29380423, 69997945.0 / 29380423},
	},
}
