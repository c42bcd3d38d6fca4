// Package tune searches for the work-group size that minimizes kernel
// launch time on the selected device. The search space is the powers
// of two up to a configurable cap, explored with a mayfly swarm over
// the exponent.
package tune

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/cwbudde/mayfly"
)

// Objective measures one candidate work-group size and returns the
// launch time it achieved.
type Objective func(localSize int) (time.Duration, error)

// Result is the best size the search found.
type Result struct {
	LocalSize int
	Elapsed   time.Duration
}

// Options bound the search.
type Options struct {
	// MaxExp caps candidate sizes at 2^MaxExp.
	MaxExp int
	// Iters and Pop size the swarm.
	Iters int
	Pop   int
	Seed  int64
}

// DefaultOptions searches sizes 1..1024 with a small swarm. The
// library needs at least 20 mayflies to form its populations.
func DefaultOptions() Options {
	return Options{MaxExp: 10, Iters: 12, Pop: 20, Seed: 42}
}

// Tune runs the search. Each exponent is measured at most once; the
// cached timing answers repeat visits, so the cost stays bounded by
// MaxExp+1 objective calls no matter how long the swarm runs.
func Tune(obj Objective, opts Options) (Result, error) {
	if opts.MaxExp < 0 {
		return Result{}, fmt.Errorf("tune: max exponent must not be negative, got %d", opts.MaxExp)
	}

	cache := make(map[int]time.Duration)
	var firstErr error

	measure := func(exp int) float64 {
		if elapsed, ok := cache[exp]; ok {
			return elapsed.Seconds()
		}
		elapsed, err := obj(1 << exp)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Debug("candidate failed", "localSize", 1<<exp, "error", err)
			return math.Inf(1)
		}
		cache[exp] = elapsed
		slog.Debug("candidate measured", "localSize", 1<<exp, "elapsed", elapsed)
		return elapsed.Seconds()
	}

	cfg := mayfly.NewDefaultConfig()
	cfg.ObjectiveFunc = func(x []float64) float64 {
		exp := int(math.Round(x[0]))
		if exp < 0 {
			exp = 0
		}
		if exp > opts.MaxExp {
			exp = opts.MaxExp
		}
		return measure(exp)
	}
	cfg.ProblemSize = 1
	cfg.MaxIterations = opts.Iters
	cfg.NPop = opts.Pop
	cfg.LowerBound = 0
	cfg.UpperBound = float64(opts.MaxExp)
	cfg.Rand = rand.New(rand.NewSource(opts.Seed))

	if _, err := mayfly.Optimize(cfg); err != nil {
		if firstErr != nil {
			return Result{}, fmt.Errorf("tune: every candidate failed: %w", firstErr)
		}
		return Result{}, fmt.Errorf("tune: %w", err)
	}

	// The swarm's best position can land between cached exponents, so
	// the answer comes from the cache itself.
	best := Result{LocalSize: 0, Elapsed: math.MaxInt64}
	for exp, elapsed := range cache {
		if elapsed < best.Elapsed {
			best = Result{LocalSize: 1 << exp, Elapsed: elapsed}
		}
	}
	if best.LocalSize == 0 {
		if firstErr != nil {
			return Result{}, fmt.Errorf("tune: every candidate failed: %w", firstErr)
		}
		return Result{}, fmt.Errorf("tune: no candidate was measured")
	}
	return best, nil
}
