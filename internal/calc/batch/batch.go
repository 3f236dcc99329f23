// Package batch runs many slope analyses at once: explicit lists of trial
// circles and grid searches for the critical circle.
package batch

import (
	"errors"
	"fmt"

	"GeoSuite/internal/calc"
	"GeoSuite/internal/calc/slope"
)

const MaxItems = 500

type SlopeBatchInput struct {
	Items []slope.Input `json:"items"`
}

// SlopeItem is the outcome of one input. Error is set when the circle was
// rejected; a non-convergent result carries its Warning instead.
type SlopeItem struct {
	Index  int           `json:"index"`
	Result *slope.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type SlopeBatchResult struct {
	Count    int         `json:"count"`
	Failed   int         `json:"failed"`
	Warnings int         `json:"warnings"`
	Results  []SlopeItem `json:"results"`
}

func CalculateSlopes(in SlopeBatchInput) (SlopeBatchResult, error) {
	if len(in.Items) == 0 {
		return SlopeBatchResult{}, fmt.Errorf("%w: no items", calc.ErrInvalidInput)
	}
	if len(in.Items) > MaxItems {
		return SlopeBatchResult{}, fmt.Errorf("%w: more than %d items", calc.ErrInvalidInput, MaxItems)
	}
	out := SlopeBatchResult{Count: len(in.Items), Results: make([]SlopeItem, 0, len(in.Items))}
	for i, item := range in.Items {
		res, err := slope.Analyze(item)
		var warn *slope.ConvergenceWarning
		switch {
		case err == nil:
		case errors.As(err, &warn):
			out.Warnings++
		default:
			out.Failed++
			out.Results = append(out.Results, SlopeItem{Index: i, Error: err.Error()})
			continue
		}
		out.Results = append(out.Results, SlopeItem{Index: i, Result: &res})
	}
	return out, nil
}
