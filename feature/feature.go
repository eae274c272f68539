// Package feature turns table columns into model features: geometric adstock carryover, Hill
// saturation, holiday indicators and the design matrix handed to the trainer. Every transform
// returns a new table with the derived column appended and leaves its input untouched.
package feature

const (
	AdstockSuffix    = "__adstock"
	SaturationSuffix = "__sat"
	HolidayColumn    = "holiday"
)

// AdstockName returns the name of the adstock column derived from col
func AdstockName(col string) string {
	return col + AdstockSuffix
}

// SaturationName returns the name of the saturation column derived from col
func SaturationName(col string) string {
	return col + SaturationSuffix
}
