package domain

import (
	"sort"
	"strings"
)

// ClimateCode classifies a growing climate from cold to warm.
type ClimateCode string

// Climate codes recognised by the laboratory.
const (
	ClimateCold             ClimateCode = "C"
	ClimateIntermediateCold ClimateCode = "IC"
	ClimateIntermediate     ClimateCode = "I"
	ClimateIntermediateWarm ClimateCode = "IW"
	ClimateWarm             ClimateCode = "W"
)

// TemperatureRange is an inclusive range in degrees Celsius.
type TemperatureRange struct {
	Min float64
	Max float64
}

// Contains reports whether t lies within the range.
func (r TemperatureRange) Contains(t float64) bool {
	return t >= r.Min && t <= r.Max
}

var climateRanges = map[ClimateCode]TemperatureRange{
	ClimateCold:             {Min: 10, Max: 18},
	ClimateIntermediateCold: {Min: 15, Max: 22},
	ClimateIntermediate:     {Min: 18, Max: 25},
	ClimateIntermediateWarm: {Min: 20, Max: 28},
	ClimateWarm:             {Min: 25, Max: 32},
}

// ClimateCodes lists every climate code from cold to warm.
func ClimateCodes() []ClimateCode {
	return []ClimateCode{ClimateCold, ClimateIntermediateCold, ClimateIntermediate, ClimateIntermediateWarm, ClimateWarm}
}

// Valid reports whether c is a recognised climate code.
func (c ClimateCode) Valid() bool {
	_, ok := climateRanges[c]
	return ok
}

// TemperatureRange returns the nominal range of the climate.
func (c ClimateCode) TemperatureRange() (TemperatureRange, bool) {
	r, ok := climateRanges[c]
	return r, ok
}

// ClimateSet is an unordered set of climate codes.
type ClimateSet map[ClimateCode]struct{}

// NewClimateSet builds a set from codes.
func NewClimateSet(codes ...ClimateCode) ClimateSet {
	set := make(ClimateSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports whether c is part of the set.
func (s ClimateSet) Contains(c ClimateCode) bool {
	_, ok := s[c]
	return ok
}

// String renders the set in cold-to-warm order, e.g. "IW, W".
func (s ClimateSet) String() string {
	order := make(map[ClimateCode]int, len(climateRanges))
	for i, c := range ClimateCodes() {
		order[c] = i
	}
	codes := make([]string, 0, len(s))
	for c := range s {
		codes = append(codes, string(c))
	}
	sort.Slice(codes, func(i, j int) bool {
		return order[ClimateCode(codes[i])] < order[ClimateCode(codes[j])]
	})
	return strings.Join(codes, ", ")
}
