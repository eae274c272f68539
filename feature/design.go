package feature

import (
	"errors"
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-attribution/mat"
	"github.com/aouyang1/go-attribution/timedataset"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownTransform = errors.New("unknown transform")
	ErrNoFeatures       = errors.New("no feature columns")
	ErrNullValues       = errors.New("column has null values")
)

// Transform names an elementwise transform applied to the target or the features
type Transform string

const (
	TransformNone  Transform = "none"
	TransformLog1p Transform = "log1p"
)

// ParseTransform maps a configured name to a Transform. An empty name is TransformNone.
func ParseTransform(name string) (Transform, error) {
	switch Transform(name) {
	case "", TransformNone:
		return TransformNone, nil
	case TransformLog1p:
		return TransformLog1p, nil
	}
	return "", fmt.Errorf("got %q, expected one of [%s %s], %w", name, TransformNone, TransformLog1p, ErrUnknownTransform)
}

// Apply returns a transformed copy of x. log1p computes log(1 + max(x, 0)).
func (tr Transform) Apply(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	if tr == TransformLog1p {
		for i, v := range out {
			out[i] = math.Log1p(math.Max(v, 0))
		}
	}
	return out
}

// DesignMatrix holds the model inputs. X has one row per observation in table order and one
// column per entry of FeatureNames.
type DesignMatrix struct {
	X            *mat.Dense
	Y            []float64
	FeatureNames []string

	labels *Labels
}

// Labels indexes the feature names
func (d *DesignMatrix) Labels() *Labels {
	return d.labels
}

// BuildXY extracts the target and the feature columns, in the given order, applying the target
// and feature transforms.
func BuildXY(t *timedataset.Table, targetCol string, featureCols []string, targetTransform, featureTransform string) (*DesignMatrix, error) {
	if len(featureCols) == 0 {
		return nil, ErrNoFeatures
	}
	labels, err := NewLabels(featureCols)
	if err != nil {
		return nil, err
	}
	ttr, err := ParseTransform(targetTransform)
	if err != nil {
		return nil, fmt.Errorf("invalid target transform, %w", err)
	}
	ftr, err := ParseTransform(featureTransform)
	if err != nil {
		return nil, fmt.Errorf("invalid feature transform, %w", err)
	}

	y, err := t.NumericColumn(targetCol)
	if err != nil {
		return nil, fmt.Errorf("unable to read target, %w", err)
	}
	if hasNaN(y) {
		return nil, fmt.Errorf("target %s, %w", targetCol, ErrNullValues)
	}

	if t.Len() == 0 {
		return nil, timedataset.ErrNoTableData
	}
	cols := make([][]float64, len(featureCols))
	for j, c := range featureCols {
		col, err := t.NumericColumn(c)
		if err != nil {
			return nil, fmt.Errorf("unable to read feature, %w", err)
		}
		if hasNaN(col) {
			return nil, fmt.Errorf("feature %s, %w", c, ErrNullValues)
		}
		cols[j] = ftr.Apply(col)
	}
	x, err := mat_.NewDenseFromColumns(cols)
	if err != nil {
		return nil, err
	}

	return &DesignMatrix{
		X:            x,
		Y:            ttr.Apply(y),
		FeatureNames: labels.Names(),
		labels:       labels,
	}, nil
}

func hasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
