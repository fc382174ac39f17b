package transfer

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/RyanBlaney/thz-tds/algorithms/rootfind"
	"github.com/RyanBlaney/thz-tds/logging"
	"github.com/RyanBlaney/thz-tds/thz"
)

// binSolution is the outcome of one frequency bin.
type binSolution struct {
	index complex128 // physical n + i*kappa
	err   error
}

// Solve inverts the model at every bin of its measured band. Bins that do
// not converge hold NaN values and are listed in Result.Failures; the
// returned error is reserved for invalid solver configuration.
func Solve(m Model, opts ...Option) (*thz.Result, error) {
	return solve(m, newOptions(opts))
}

func solve(m Model, o options) (*thz.Result, error) {
	if m == nil || m.Measured() == nil {
		return nil, thz.Configurationf("model has no measured transfer function")
	}
	if _, err := ParseStrategy(string(o.strategy)); err != nil {
		return nil, thz.Configurationf("%v", err)
	}

	meas := m.Measured()
	bins := meas.Len()
	logger := o.logger.WithFields(logging.Fields{
		"component": "transfer_solver",
		"strategy":  o.strategy,
		"bins":      bins,
	})

	var solutions []binSolution
	switch o.strategy {
	case StrategyIndependent:
		solutions = solveIndependent(m, o)
	default:
		solutions = solveSequential(m, o)
	}

	result := assemble(meas, solutions, o.allConstants)
	for _, f := range result.Failures {
		logger.Warn("Bin did not converge", logging.Fields{
			"index":     f.Index,
			"frequency": f.Frequency,
			"error":     f.Err.Error(),
		})
	}

	logger.Debug("Inversion completed", logging.Fields{
		"converged": bins - len(result.Failures),
		"failed":    len(result.Failures),
	})
	return result, nil
}

// solveBin runs the root-find at bin k from the physical seed.
func solveBin(m Model, k int, seed complex128, s rootfind.Settings) binSolution {
	target := m.Measured().LogRatio[k]
	residual := func(z complex128) complex128 {
		return m.LogPredict(cmplx.Conj(z), k) - target
	}

	sol, err := rootfind.Solve(residual, cmplx.Conj(seed), s, feasible)
	if err != nil {
		return binSolution{
			index: cmplx.NaN(),
			err:   thz.Convergencef("%w (residual %.3g after %d iterations)", err, sol.Residual, sol.Iterations),
		}
	}
	n := cmplx.Conj(sol.Root)
	if imag(n) == 0 {
		n = complex(real(n), 0)
	}
	return binSolution{index: n}
}

// feasible projects a propagation index n - i*kappa onto kappa >= 0 and
// n >= minRealIndex.
func feasible(z complex128) (complex128, bool) {
	re, im := real(z), imag(z)
	clamped := false
	if im > 0 {
		im, clamped = 0, true
	}
	if re < minRealIndex {
		re, clamped = minRealIndex, true
	}
	return complex(re, im), clamped
}

func solveSequential(m Model, o options) []binSolution {
	out := make([]binSolution, m.Measured().Len())
	prevOK := false
	var prev complex128

	for k := range out {
		if prevOK {
			out[k] = solveBin(m, k, prev, o.solver)
			if out[k].err != nil {
				// retry from the measured phase before giving up
				out[k] = solveBin(m, k, m.InitialGuess(k), o.solver)
			}
		} else {
			out[k] = solveBin(m, k, m.InitialGuess(k), o.solver)
		}

		prevOK = out[k].err == nil
		prev = out[k].index
	}
	return out
}

func solveIndependent(m Model, o options) []binSolution {
	bins := m.Measured().Len()
	out := make([]binSolution, bins)

	var wg sync.WaitGroup
	jobs := make(chan int, bins)

	for range o.workerCount(bins) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				out[k] = solveBin(m, k, m.InitialGuess(k), o.solver)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for k := range bins {
			jobs <- k
		}
	}()

	wg.Wait()
	return out
}

// assemble converts per-bin solutions into a Result.
func assemble(meas *Measured, solutions []binSolution, all bool) *thz.Result {
	n := len(solutions)
	r := &thz.Result{
		Frequency:             append([]float64(nil), meas.Frequency...),
		RefractiveIndex:       make([]complex128, n),
		AbsorptionCoefficient: make([]float64, n),
		Converged:             make([]bool, n),
	}
	if all {
		r.TransmissionAmplitude = meas.Amplitude()
		r.TransmissionPhase = meas.Phase()
		r.DielectricConstant = make([]complex128, n)
		r.ExtinctionCoefficient = make([]float64, n)
	}

	for k, s := range solutions {
		f := meas.Frequency[k]
		if s.err != nil {
			r.RefractiveIndex[k] = cmplx.NaN()
			r.AbsorptionCoefficient[k] = math.NaN()
			r.Failures = append(r.Failures, thz.BinFailure{Index: k, Frequency: f, Err: s.err})
			if all {
				r.DielectricConstant[k] = cmplx.NaN()
				r.ExtinctionCoefficient[k] = math.NaN()
			}
			continue
		}

		r.Converged[k] = true
		r.RefractiveIndex[k] = s.index
		r.AbsorptionCoefficient[k] = thz.AbsorptionCoefficient(f, imag(s.index))
		if all {
			r.DielectricConstant[k] = s.index * s.index
			r.ExtinctionCoefficient[k] = imag(s.index)
		}
	}
	return r
}
