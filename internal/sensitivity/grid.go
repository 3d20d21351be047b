// Package sensitivity recomputes a DCF model across a two-dimensional sweep
// of assumptions.
package sensitivity

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/models"
	"intrinsic-valuator/internal/valuation"
)

const abandoned = "abandoned: context cancelled before the cell was evaluated"

// Generator evaluates grid cells with a bounded pool of workers.
type Generator struct {
	workers    int
	classifier valuation.Classifier
}

// NewGenerator creates a generator. workers <= 0 uses GOMAXPROCS.
func NewGenerator(workers int, classifier valuation.Classifier) *Generator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{workers: workers, classifier: classifier}
}

// Generate evaluates method once per (row, column) pair with both values
// substituted into base. A failing cell is marked invalid and the grid
// carries on. If ctx is cancelled the cells not yet started are marked
// abandoned and the partial grid is returned together with ctx.Err().
func (g *Generator) Generate(ctx context.Context, s *models.FinancialSnapshot, base models.ValuationAssumptions, method models.Method, rows, cols models.Axis) (*models.SensitivityGrid, error) {
	if !method.IsDCF() {
		return nil, verrors.NewValidationError("method", string(method), "sensitivity grids are only defined for DCF models")
	}
	if rows.Len() == 0 || cols.Len() == 0 {
		return nil, verrors.NewValidationError("axis", rows.Len()*cols.Len(), "both axes need at least one value")
	}
	if rows.Parameter == cols.Parameter {
		return nil, verrors.NewValidationError("axis", string(rows.Parameter), "row and column parameters must differ")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger := logging.WithMethod(logging.WithTicker(logging.FromContext(ctx), s.Ticker), string(method))
	start := time.Now()

	nRows, nCols := rows.Len(), cols.Len()
	slots := make([]models.SensitivityCell, nRows*nCols)
	for idx := range slots {
		slots[idx] = models.SensitivityCell{
			Row:    rows.Values[idx/nCols],
			Column: cols.Values[idx%nCols],
			Error:  abandoned,
		}
	}

	eg := new(errgroup.Group)
	eg.SetLimit(g.workers)

	for idx := range slots {
		if ctx.Err() != nil {
			break
		}
		idx := idx
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			slots[idx] = g.cell(s, base, method, rows.Parameter, cols.Parameter, slots[idx].Row, slots[idx].Column)
			return nil
		})
	}
	_ = eg.Wait()

	grid := &models.SensitivityGrid{
		Method:  method,
		Ticker:  s.Ticker,
		Rows:    rows,
		Columns: cols,
		Cells:   make([][]models.SensitivityCell, nRows),
	}
	for i := 0; i < nRows; i++ {
		grid.Cells[i] = slots[i*nCols : (i+1)*nCols]
	}

	logging.LogGrid(logger, string(method), string(rows.Parameter), string(cols.Parameter), len(slots), grid.InvalidCount(), time.Since(start))

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("Sensitivity grid abandoned")
		return grid, err
	}
	return grid, nil
}

func (g *Generator) cell(s *models.FinancialSnapshot, base models.ValuationAssumptions, method models.Method, rp, cp models.Parameter, rv, cv float64) models.SensitivityCell {
	c := models.SensitivityCell{Row: rv, Column: cv}

	a, err := Apply(base, rp, rv)
	if err == nil {
		a, err = Apply(a, cp, cv)
	}
	if err != nil {
		c.Error = err.Error()
		return c
	}

	res, err := valuation.Value(method, s, a, g.classifier)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	c.FairValue = res.FairValue
	c.Upside = res.Upside
	c.Valid = true
	return c
}
