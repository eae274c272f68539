package timedataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoSimulatedPoints = errors.New("number of simulated points must be positive")
	ErrNoSimulatedSpend  = errors.New("at least one spend channel is required")
	ErrInvalidInterval   = errors.New("interval must be positive")
	ErrInvalidCarryover  = errors.New("carryover must be within [0, 1)")
)

const (
	DefaultSimulatedPoints = 156
	DefaultInterval        = 7 * 24 * time.Hour
	DefaultBaseline        = 1000.0
	DefaultCarryover       = 0.4
	DefaultNoiseScale      = 20.0
)

// Channel describes one simulated media spend column
type Channel struct {
	Name string

	// Spend is the spend level during a flight
	Spend float64

	// Effect is the revenue per unit of carried over spend
	Effect float64

	// FlightPeriod is the time between the start of two consecutive flights and Duty is the
	// fraction of the period a flight is live.
	FlightPeriod time.Duration
	Duty         float64
}

// SimulateOptions configures a synthetic marketing dataset
type SimulateOptions struct {
	NumPoints  int
	Interval   time.Duration
	NowFunc    func() time.Time
	Channels   []Channel
	Baseline   float64
	Carryover  float64
	NoiseScale float64
	Seed       uint64
}

// NewDefaultSimulateOptions returns three years of weekly data with three channels
func NewDefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		NumPoints: DefaultSimulatedPoints,
		Interval:  DefaultInterval,
		NowFunc: func() time.Time {
			return time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
		},
		Channels: []Channel{
			{Name: "spend_tv", Spend: 500, Effect: 1.2, FlightPeriod: 13 * DefaultInterval, Duty: 0.5},
			{Name: "spend_search", Spend: 200, Effect: 2.5, FlightPeriod: 4 * DefaultInterval, Duty: 0.75},
			{Name: "spend_social", Spend: 150, Effect: 0.8, FlightPeriod: 8 * DefaultInterval, Duty: 0.4},
		},
		Baseline:   DefaultBaseline,
		Carryover:  DefaultCarryover,
		NoiseScale: DefaultNoiseScale,
		Seed:       42,
	}
}

// Validate runs basic validation on the simulation options
func (s *SimulateOptions) Validate() (*SimulateOptions, error) {
	if s == nil {
		s = NewDefaultSimulateOptions()
	}
	if s.NumPoints <= 0 {
		return nil, ErrNoSimulatedPoints
	}
	if s.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if len(s.Channels) == 0 {
		return nil, ErrNoSimulatedSpend
	}
	if s.Carryover < 0 || s.Carryover >= 1 {
		return nil, fmt.Errorf("got %.3f, %w", s.Carryover, ErrInvalidCarryover)
	}
	if s.NowFunc == nil {
		s.NowFunc = time.Now
	}
	return s, nil
}

// Simulate builds a table with a date column, one spend column per channel, a temperature and
// a promo control and a revenue target. Revenue is the baseline plus the carried over spend of
// every channel times its effect, the controls, and gaussian noise.
func Simulate(opt *SimulateOptions) (*Table, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))
	n := opt.NumPoints
	t := GenerateT(n, opt.Interval, opt.NowFunc)
	table := NewTableFromTimes("date", t)

	yearSec := (365 * 24 * time.Hour).Seconds()
	revenue := GenerateConstY(n, opt.Baseline)

	for _, ch := range opt.Channels {
		spend := GeneratePulseY(t, ch.Spend, ch.FlightPeriod.Seconds(), 1.0, 0, ch.Duty).
			Add(GenerateNoise(rng, t, ch.Spend*0.05, 0, yearSec, 1.0, 0))
		for i := range spend {
			spend[i] = math.Max(spend[i], 0)
		}
		if err := table.AddColumn(ch.Name, spend, true); err != nil {
			return nil, err
		}

		carried := make(Series, n)
		for i := range spend {
			carried[i] = spend[i]
			if i > 0 {
				carried[i] += opt.Carryover * carried[i-1]
			}
		}
		floats.Scale(ch.Effect, carried)
		revenue.Add(carried)
	}

	temperature := GenerateWaveY(t, 10, yearSec, 1.0, 0).Add(GenerateConstY(n, 15))
	if err := table.AddColumn("temperature", temperature, true); err != nil {
		return nil, err
	}
	promo := GenerateConstY(n, 0).SetConst(t, 1.0, t[n/2], t[n/2].Add(4*opt.Interval))
	if err := table.AddColumn("promo", promo, true); err != nil {
		return nil, err
	}

	revenue.
		Add(GenerateConstY(n, 0).Add(temperature).Scale(3.0)).
		Add(GenerateConstY(n, 0).Add(promo).Scale(150.0)).
		Add(GenerateNoise(rng, t, opt.NoiseScale, 0, yearSec, 1.0, 0))
	if err := table.AddColumn("revenue", revenue, true); err != nil {
		return nil, err
	}
	return table, nil
}

// GenerateT returns n timestamps spaced by interval ending one interval before nowFunc,
// truncated to the minute.
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval).UTC()
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

func GenerateWaveY(t []time.Time, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		val := amp * math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset))
		y = append(y, val)
	}
	return Series(y)
}

// GenerateNoise draws gaussian noise whose scale oscillates around noiseScale by amp
func GenerateNoise(rng *rand.Rand, t []time.Time, noiseScale, amp, periodSec, order, timeOffset float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		scale := (noiseScale + amp*math.Sin(2.0*math.Pi*order/periodSec*(float64(t[i].Unix())+timeOffset)))
		y = append(y, rng.NormFloat64()*scale)
	}
	return Series(y)
}

func GeneratePulseY(t []time.Time, amp, periodSec, order, timeOffset, duty float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	cycleCutoff := 1.0 - duty/2.0
	for i := 0; i < n; i++ {
		cyclePos := math.Cos(2.0 * math.Pi * order / periodSec * (float64(t[i].Unix()) + timeOffset))
		val := 0.0
		if cyclePos >= cycleCutoff {
			val = amp
		}

		y = append(y, val)
	}
	return Series(y)
}
