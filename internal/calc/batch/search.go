package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"GeoSuite/internal/calc"
	"GeoSuite/internal/calc/slope"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

const MaxTrials = 100000

// Range is an evenly spaced axis of the search grid. Steps of 0 or 1 use Min
// only.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Steps int     `json:"steps"`
}

func (r Range) count() int {
	if r.Steps <= 1 || r.Max == r.Min {
		return 1
	}
	return r.Steps
}

func (r Range) values() []float64 {
	if r.count() == 1 {
		return []float64{r.Min}
	}
	return floats.Span(make([]float64, r.Steps), r.Min, r.Max)
}

func (r Range) validate(name string) error {
	if r.Steps < 0 || r.Steps > MaxTrials || r.Max < r.Min {
		return fmt.Errorf("%w: %s range", calc.ErrInvalidInput, name)
	}
	return nil
}

// gridSize multiplies the axis lengths, stopping once MaxTrials is passed.
// Each axis is at most MaxTrials long, so the product cannot overflow.
func gridSize(axes ...Range) (int, error) {
	total := 1
	for _, r := range axes {
		total *= r.count()
		if total > MaxTrials {
			return 0, fmt.Errorf("%w: grid exceeds %d trials", calc.ErrInvalidInput, MaxTrials)
		}
	}
	return total, nil
}

// SearchInput holds the soil and slope parameters of Slope; its centre and
// radius are replaced by every grid point.
type SearchInput struct {
	Slope   slope.Input `json:"slope"`
	CenterX Range       `json:"center_x"`
	CenterY Range       `json:"center_y"`
	Radius  Range       `json:"radius"`
	Workers int         `json:"workers"`
}

type Trial struct {
	CenterXM     float64 `json:"center_x_m"`
	CenterYM     float64 `json:"center_y_m"`
	RadiusM      float64 `json:"radius_m"`
	SafetyFactor float64 `json:"safety_factor"`
	Iterations   int     `json:"iterations"`
}

type SearchResult struct {
	Critical       *Trial        `json:"critical,omitempty"`
	CriticalResult *slope.Result `json:"critical_result,omitempty"`
	Trials         int           `json:"trials"`
	Evaluated      int           `json:"evaluated"`
	Rejected       int           `json:"rejected"`
	NonConvergent  int           `json:"non_convergent"`
	Unbounded      int           `json:"unbounded"`
}

type outcome int

const (
	converged outcome = iota
	rejected
	nonConvergent
	unbounded
)

type trialResult struct {
	trial   Trial
	outcome outcome
}

// Search evaluates every centre and radius of the grid with a pool of
// workers and reports the converged trial with the lowest safety factor.
// Ties keep the first trial in grid order.
func Search(ctx context.Context, in SearchInput) (SearchResult, error) {
	for name, r := range map[string]Range{"center_x": in.CenterX, "center_y": in.CenterY, "radius": in.Radius} {
		if err := r.validate(name); err != nil {
			return SearchResult{}, err
		}
	}
	if in.Radius.Min <= 0 {
		return SearchResult{}, fmt.Errorf("%w: radius range must be positive", calc.ErrInvalidInput)
	}
	base := in.Slope
	base.CenterXM, base.CenterYM, base.RadiusM = 0, 0, in.Radius.Min
	if err := base.Validate(); err != nil {
		return SearchResult{}, err
	}

	total, err := gridSize(in.CenterX, in.CenterY, in.Radius)
	if err != nil {
		return SearchResult{}, err
	}
	xs, ys, rs := in.CenterX.values(), in.CenterY.values(), in.Radius.values()
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]trialResult, total)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		x := xs[i/(len(ys)*len(rs))]
		y := ys[(i/len(rs))%len(ys)]
		r := rs[i%len(rs)]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := base
			item.CenterXM, item.CenterYM, item.RadiusM = x, y, r
			results[i] = evaluate(item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}

	out := SearchResult{Trials: total}
	best := -1
	for i, tr := range results {
		switch tr.outcome {
		case rejected:
			out.Rejected++
			continue
		case nonConvergent:
			out.NonConvergent++
		case unbounded:
			out.Unbounded++
		}
		out.Evaluated++
		if tr.outcome != converged {
			continue
		}
		if best < 0 || tr.trial.SafetyFactor < results[best].trial.SafetyFactor {
			best = i
		}
	}
	if best >= 0 {
		critical := results[best].trial
		item := base
		item.CenterXM, item.CenterYM, item.RadiusM = critical.CenterXM, critical.CenterYM, critical.RadiusM
		res, err := slope.Analyze(item)
		if err != nil {
			return SearchResult{}, fmt.Errorf("re-running critical circle: %w", err)
		}
		out.Critical = &critical
		out.CriticalResult = &res
	}
	return out, nil
}

func evaluate(in slope.Input) trialResult {
	tr := trialResult{trial: Trial{CenterXM: in.CenterXM, CenterYM: in.CenterYM, RadiusM: in.RadiusM}}
	res, err := slope.Analyze(in)
	var warn *slope.ConvergenceWarning
	switch {
	case err == nil:
	case errors.As(err, &warn):
		tr.outcome = nonConvergent
	default:
		tr.outcome = rejected
		return tr
	}
	tr.trial.SafetyFactor = res.SafetyFactor
	tr.trial.Iterations = res.Iterations
	if tr.outcome == converged && res.Unbounded() {
		tr.outcome = unbounded
	}
	return tr
}
