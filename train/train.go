package train

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mat_ "github.com/aouyang1/go-attribution/mat"
	"github.com/aouyang1/go-attribution/models"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// FitResult is the outcome of the grid search. Coef is in feature order and FoldMetrics are the
// cross validation scores of the winning combination.
type FitResult struct {
	Model       *models.ElasticNetRegression
	Scaler      *models.StandardScaler
	Coef        []float64
	Intercept   float64
	FoldMetrics []FoldMetrics
	BestParams  Params
	Cells       []CellResult
}

// Predict applies the fitted scaler, when present, and the model to raw features
func (f *FitResult) Predict(x mat.Matrix) ([]float64, error) {
	xs, err := f.Transform(x)
	if err != nil {
		return nil, err
	}
	return f.Model.Predict(xs)
}

// Transform returns the features the way the final model saw them
func (f *FitResult) Transform(x mat.Matrix) (mat.Matrix, error) {
	if f.Scaler == nil {
		return x, nil
	}
	return f.Scaler.Transform(x)
}

// split holds the raw rows of one fold. It is shared read-only between cells.
type split struct {
	index  int
	xTrain *mat.Dense
	yTrain []float64
	xTest  *mat.Dense
	yTest  []float64
}

// FitElasticNetTSCV evaluates every grid cell on every cross validation fold, picks the cell
// minimizing (avg MAPE, -avg R2) and refits it on all of x and y. Cells run concurrently, but
// the selection only depends on the grid order.
func FitElasticNetTSCV(ctx context.Context, x mat.Matrix, y []float64, opt *Options) (*FitResult, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if x == nil {
		return nil, models.ErrNoTrainingMatrix
	}
	m, _ := x.Dims()
	if len(y) != m {
		return nil, fmt.Errorf("training data has %d rows and target has %d rows, %w", m, len(y), models.ErrTargetLenMismatch)
	}

	splits, err := buildSplits(x, y, opt.CV)
	if err != nil {
		return nil, err
	}

	params := opt.Grid.Params()
	cells := make([]CellResult, len(params))

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opt.workers())
	for i, p := range params {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cell, err := evaluateCell(p, splits, opt)
			if err != nil {
				return fmt.Errorf("grid cell alpha=%g l1_ratio=%g, %w", p.Alpha, p.L1Ratio, err)
			}
			slog.Debug("evaluated grid cell", "alpha", p.Alpha, "l1_ratio", p.L1Ratio, "avg_mape", cell.AvgMAPE, "avg_r2", cell.AvgR2)
			cells[i] = cell
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best, err := SelectBest(cells)
	if err != nil {
		return nil, err
	}
	slog.Info("selected hyperparameters",
		"alpha", best.Params.Alpha,
		"l1_ratio", best.Params.L1Ratio,
		"avg_mape", best.AvgMAPE,
		"avg_r2", best.AvgR2,
		"cells", len(cells),
		"folds", len(splits),
		"elapsed", time.Since(start),
	)

	res, err := refit(x, y, best, opt)
	if err != nil {
		return nil, err
	}
	res.Cells = cells
	return res, nil
}

func buildSplits(x mat.Matrix, y []float64, cv *models.TimeSeriesCV) ([]split, error) {
	m, _ := x.Dims()
	seq, err := cv.Split(m)
	if err != nil {
		return nil, err
	}

	var splits []split
	for fold, err := range seq {
		if err != nil {
			return nil, err
		}
		s := split{index: fold.Index}
		if s.xTrain, err = mat_.SelectRows(x, fold.Train); err != nil {
			return nil, err
		}
		if s.yTrain, err = mat_.SelectElems(y, fold.Train); err != nil {
			return nil, err
		}
		if s.xTest, err = mat_.SelectRows(x, fold.Test); err != nil {
			return nil, err
		}
		if s.yTest, err = mat_.SelectElems(y, fold.Test); err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}
	return splits, nil
}

func evaluateCell(p Params, splits []split, opt *Options) (CellResult, error) {
	folds := make([]FoldMetrics, 0, len(splits))
	for _, s := range splits {
		var xTrain, xTest mat.Matrix = s.xTrain, s.xTest
		if opt.Standardize {
			var scaler models.StandardScaler
			scaled, err := scaler.FitTransform(xTrain)
			if err != nil {
				return CellResult{}, err
			}
			xTrain = scaled
			if xTest, err = scaler.Transform(xTest); err != nil {
				return CellResult{}, err
			}
		}

		model, err := models.NewElasticNetRegression(opt.elasticNetOptions(p))
		if err != nil {
			return CellResult{}, err
		}
		if err := model.Fit(xTrain, mat.NewDense(len(s.yTrain), 1, s.yTrain)); err != nil {
			return CellResult{}, fmt.Errorf("unable to fit fold %d, %w", s.index, err)
		}
		pred, err := model.Predict(xTest)
		if err != nil {
			return CellResult{}, fmt.Errorf("unable to predict fold %d, %w", s.index, err)
		}
		scores, err := models.NewScores(pred, s.yTest)
		if err != nil {
			return CellResult{}, fmt.Errorf("unable to score fold %d, %w", s.index, err)
		}
		folds = append(folds, newFoldMetrics(s.index, p, scores))
	}
	return newCellResult(p, folds), nil
}

func refit(x mat.Matrix, y []float64, best CellResult, opt *Options) (*FitResult, error) {
	var scaler *models.StandardScaler
	xFit := x
	if opt.Standardize {
		scaler = new(models.StandardScaler)
		scaled, err := scaler.FitTransform(x)
		if err != nil {
			return nil, fmt.Errorf("unable to scale full dataset, %w", err)
		}
		xFit = scaled
	}

	model, err := models.NewElasticNetRegression(opt.elasticNetOptions(best.Params))
	if err != nil {
		return nil, err
	}
	if err := model.Fit(xFit, mat.NewDense(len(y), 1, y)); err != nil {
		return nil, fmt.Errorf("unable to refit on full dataset, %w", err)
	}
	if model.Iterations() >= opt.Iterations {
		slog.Warn("elastic net did not converge", "iterations", model.Iterations(), "tolerance", opt.Tolerance)
	}

	return &FitResult{
		Model:       model,
		Scaler:      scaler,
		Coef:        model.Coef(),
		Intercept:   model.Intercept(),
		FoldMetrics: best.Folds,
		BestParams:  best.Params,
	}, nil
}
