// Package rootfind solves scalar complex equations f(z) = 0.
//
// Solve runs a damped complex Newton iteration with a central-difference
// derivative and, if that fails, polishes the seed with gonum's Nelder-Mead
// minimiser on |f|^2. A Projection keeps iterates inside a feasible region.
package rootfind

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/optimize"
)

// Errors returned by the solvers.
var (
	ErrNoConvergence = errors.New("rootfind: no convergence")
	ErrSingular      = errors.New("rootfind: vanishing derivative")
	ErrNotFinite     = errors.New("rootfind: residual is not finite")
)

// Func is a holomorphic function whose root is sought.
type Func func(z complex128) complex128

// Projection maps z onto the feasible region and reports whether it moved.
type Projection func(z complex128) (complex128, bool)

// Settings bound the iteration.
type Settings struct {
	MaxIterations       int     `json:"max_iterations"`
	Tolerance           float64 `json:"tolerance"`
	MaxStep             float64 `json:"max_step"`
	FallbackTolerance   float64 `json:"fallback_tolerance"`
	FallbackEvaluations int     `json:"fallback_evaluations"`
	DisableFallback     bool    `json:"disable_fallback"`
}

// DefaultSettings returns the bounds used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations:       100,
		Tolerance:           1e-10,
		MaxStep:             0.5,
		FallbackTolerance:   1e-6,
		FallbackEvaluations: 2000,
	}
}

// normalized fills zero fields with defaults.
func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.Tolerance <= 0 {
		s.Tolerance = d.Tolerance
	}
	if s.MaxStep <= 0 {
		s.MaxStep = d.MaxStep
	}
	if s.FallbackTolerance <= 0 {
		s.FallbackTolerance = d.FallbackTolerance
	}
	if s.FallbackEvaluations <= 0 {
		s.FallbackEvaluations = d.FallbackEvaluations
	}
	return s
}

// Solution describes a converged root.
type Solution struct {
	Root       complex128
	Residual   float64
	Iterations int

	// Clamped is set when the root sits on the boundary of the feasible
	// region and only the boundary-tangent part of f was zeroed.
	Clamped bool

	// Fallback is set when Nelder-Mead produced the root.
	Fallback bool
}

// Solve finds a root of f starting from z0, trying Newton first and the
// Nelder-Mead fallback second. project may be nil.
func Solve(f Func, z0 complex128, s Settings, project Projection) (Solution, error) {
	s = s.normalized()

	sol, err := Newton(f, z0, s, project)
	if err == nil || s.DisableFallback {
		return sol, err
	}

	fb, fbErr := NelderMead(f, z0, s, project)
	if fbErr != nil {
		return sol, err
	}
	fb.Iterations += sol.Iterations
	return fb, nil
}

// Newton runs the damped complex Newton iteration.
func Newton(f Func, z0 complex128, s Settings, project Projection) (Solution, error) {
	s = s.normalized()
	if project == nil {
		project = func(z complex128) (complex128, bool) { return z, false }
	}

	z, clamped := project(z0)
	sol := Solution{Root: z, Residual: math.Inf(1)}

	for iter := 0; iter < s.MaxIterations; iter++ {
		g := f(z)
		res := cmplx.Abs(g)
		sol.Iterations = iter + 1
		sol.Root, sol.Residual, sol.Clamped = z, res, clamped

		if math.IsNaN(res) || math.IsInf(res, 0) {
			return sol, ErrNotFinite
		}
		if res <= s.Tolerance {
			sol.Clamped = false
			return sol, nil
		}

		d := derivative(f, z)
		if d == 0 || cmplx.IsNaN(d) || cmplx.IsInf(d) {
			return sol, ErrSingular
		}

		step := g / d
		if a := cmplx.Abs(step); a > s.MaxStep {
			step *= complex(s.MaxStep/a, 0)
		}

		z, clamped = project(z - step)

		if clamped && math.Abs(real(step)) <= s.Tolerance*(1+math.Abs(real(z))) {
			sol.Root, sol.Residual, sol.Clamped = z, cmplx.Abs(f(z)), true
			return sol, nil
		}
		if cmplx.Abs(step) <= s.Tolerance*s.Tolerance*(1+cmplx.Abs(z)) && !clamped {
			// Stalled without reaching tolerance.
			break
		}
	}

	return sol, ErrNoConvergence
}

// derivative estimates f'(z) by a central difference along the real axis,
// which equals the complex derivative for holomorphic f.
func derivative(f Func, z complex128) complex128 {
	h := 1e-6 * math.Max(1, cmplx.Abs(z))
	return (f(z+complex(h, 0)) - f(z-complex(h, 0))) / complex(2*h, 0)
}

// NelderMead minimises |f(z)|^2 over the feasible region starting from z0.
// Infeasible trial points are penalised by their squared distance to the
// region.
func NelderMead(f Func, z0 complex128, s Settings, project Projection) (Solution, error) {
	s = s.normalized()
	if project == nil {
		project = func(z complex128) (complex128, bool) { return z, false }
	}

	objective := func(x []float64) float64 {
		z := complex(x[0], x[1])
		p, _ := project(z)
		g := f(p)
		v := real(g)*real(g) + imag(g)*imag(g)
		dz := z - p
		v += 1e3 * (real(dz)*real(dz) + imag(dz)*imag(dz))
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	start, _ := project(z0)
	result, err := optimize.Minimize(
		optimize.Problem{Func: objective},
		[]float64{real(start), imag(start)},
		&optimize.Settings{
			FuncEvaluations: s.FallbackEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   s.FallbackTolerance * s.FallbackTolerance * 1e-4,
				Iterations: 50,
			},
		},
		&optimize.NelderMead{},
	)
	if result == nil {
		if err == nil {
			err = ErrNoConvergence
		}
		return Solution{}, err
	}

	root, clamped := project(complex(result.X[0], result.X[1]))
	sol := Solution{
		Root:       root,
		Residual:   cmplx.Abs(f(root)),
		Iterations: result.Stats.FuncEvaluations,
		Clamped:    clamped,
		Fallback:   true,
	}
	if !(sol.Residual <= s.FallbackTolerance) {
		return sol, ErrNoConvergence
	}
	return sol, nil
}
