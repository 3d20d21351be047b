package valuation

import (
	"github.com/google/uuid"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// RunOptions configures a multi-method run.
type RunOptions struct {
	// Methods to evaluate; empty means all of them.
	Methods    []models.Method
	Classifier Classifier
	// BlendWeights per method; empty means equal weights.
	BlendWeights map[models.Method]float64
	// Blend disables the blended estimate when false.
	Blend bool
}

// Run evaluates every requested method against one snapshot. A method that
// fails is recorded in Failures and the run carries on; only an invalid
// snapshot fails the whole run.
func Run(s *models.FinancialSnapshot, a models.ValuationAssumptions, opts RunOptions) (*models.ValuationRun, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	methods := opts.Methods
	if len(methods) == 0 {
		methods = models.AllMethods
	}

	run := &models.ValuationRun{
		ID:          uuid.New().String(),
		Ticker:      s.Ticker,
		Assumptions: a,
		Results:     make([]models.ValuationResult, 0, len(methods)),
	}

	if a.Beta != nil {
		if wacc, err := CalculateWACC(WACCInputFrom(a)); err == nil {
			run.WACC = &wacc
			run.Warnings = append(run.Warnings, wacc.Warnings...)
		}
	}

	for _, method := range methods {
		res, err := Value(method, s, a, opts.Classifier)
		if err != nil {
			run.Failures = append(run.Failures, models.MethodFailure{
				Method: method,
				Error:  err.Error(),
				Err:    err,
			})
			continue
		}
		run.Results = append(run.Results, res)
	}

	if opts.Blend {
		for _, f := range run.Failures {
			if w := opts.BlendWeights[f.Method]; w > 0 {
				run.Warnings = append(run.Warnings, verrors.NewWarning(verrors.WarnBlendSkipped,
					"%s carries blend weight %.2f but failed; remaining weights renormalised", f.Method, w))
			}
		}
	}

	if opts.Blend && len(run.Results) > 0 {
		blended, err := Blend(run.Results, opts.BlendWeights, opts.Classifier)
		if err != nil {
			run.Warnings = append(run.Warnings, verrors.NewWarning(verrors.WarnBlendSkipped, "%v", err))
		} else {
			run.Blended = blended
		}
	}

	return run, nil
}
