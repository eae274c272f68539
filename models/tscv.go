package models

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrInvalidSplits       = errors.New("n_splits must be >= 1")
	ErrInvalidTestSize     = errors.New("test_size must be >= 1")
	ErrInvalidGap          = errors.New("gap must be >= 0")
	ErrInsufficientSamples = errors.New("not enough samples for the requested cv splits")
	ErrNoTrainingSamples   = errors.New("gap leaves no training samples")
)

// Fold holds the row indices of one cross validation split. Train and Test never overlap.
type Fold struct {
	Index int
	Train []int
	Test  []int
}

// TimeSeriesCV produces expanding window splits with a fixed test size. Every fold trains on
// all rows before its test window, minus an optional gap, so later folds see more history.
type TimeSeriesCV struct {
	NSplits  int `json:"n_splits"`
	TestSize int `json:"test_size"`
	Gap      int `json:"gap"`
}

// NewTimeSeriesCV returns a cross validator with the given split count, test size and gap
func NewTimeSeriesCV(nSplits, testSize, gap int) *TimeSeriesCV {
	return &TimeSeriesCV{
		NSplits:  nSplits,
		TestSize: testSize,
		Gap:      gap,
	}
}

// Split validates the split parameters against the number of samples and returns an iterator
// over the folds in index order. Fold i tests on
//
//	[n - (nSplits-i)*testSize, n - (nSplits-i-1)*testSize)
//
// and trains on [0, testStart-gap). A fold left with no training rows yields
// ErrNoTrainingSamples when reached and ends the iteration.
func (cv *TimeSeriesCV) Split(nSamples int) (iter.Seq2[Fold, error], error) {
	if cv.NSplits < 1 {
		return nil, fmt.Errorf("got %d, %w", cv.NSplits, ErrInvalidSplits)
	}
	if cv.TestSize < 1 {
		return nil, fmt.Errorf("got %d, %w", cv.TestSize, ErrInvalidTestSize)
	}
	if cv.Gap < 0 {
		return nil, fmt.Errorf("got %d, %w", cv.Gap, ErrInvalidGap)
	}

	totalTest := cv.NSplits * cv.TestSize
	if nSamples <= totalTest {
		return nil, fmt.Errorf("%d samples with %d splits of %d test samples, %w", nSamples, cv.NSplits, cv.TestSize, ErrInsufficientSamples)
	}

	nSplits, testSize, gap := cv.NSplits, cv.TestSize, cv.Gap
	return func(yield func(Fold, error) bool) {
		for i := 0; i < nSplits; i++ {
			testEnd := nSamples - (nSplits-i-1)*testSize
			testStart := testEnd - testSize
			trainEnd := max(0, testStart-gap)
			if trainEnd < 1 {
				yield(Fold{Index: i}, fmt.Errorf("fold %d with gap %d, reduce gap or n_splits, %w", i, gap, ErrNoTrainingSamples))
				return
			}

			fold := Fold{
				Index: i,
				Train: indexRange(0, trainEnd),
				Test:  indexRange(testStart, testEnd),
			}
			if !yield(fold, nil) {
				return
			}
		}
	}, nil
}

// Folds collects every fold, stopping at the first error
func (cv *TimeSeriesCV) Folds(nSamples int) ([]Fold, error) {
	seq, err := cv.Split(nSamples)
	if err != nil {
		return nil, err
	}
	folds := make([]Fold, 0, cv.NSplits)
	for fold, err := range seq {
		if err != nil {
			return nil, err
		}
		folds = append(folds, fold)
	}
	return folds, nil
}

func indexRange(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}
