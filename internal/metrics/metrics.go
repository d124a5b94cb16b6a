// Package metrics computes body-composition indices (BMI, FFMI, FMI) and
// classifies them against threshold tables loaded from variant files.
package metrics

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidHeight  = errors.New("height must be greater than 0")
	ErrInvalidWeight  = errors.New("weight must not be negative")
	ErrInvalidBodyFat = errors.New("body fat percentage must be between 0 and 100")
	ErrInvalidGender  = errors.New("gender must be one of: male, female")
	ErrIndexOverflow  = errors.New("measurement is out of range")
)

// idealBMI is the BMI used for the "ideal weight" comparison.
const idealBMI = 22.0

// Gender selects the gender-specific threshold tables.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male" or "female".
func ParseGender(s string) (Gender, error) {
	switch g := Gender(s); g {
	case Male, Female:
		return g, nil
	}
	return "", fmt.Errorf("%w (got %q)", ErrInvalidGender, s)
}

// Measurement is one set of user inputs.
type Measurement struct {
	HeightCM   float64 `json:"height_cm"`
	WeightKG   float64 `json:"weight_kg"`
	BodyFatPct float64 `json:"body_fat_pct"`
}

// HeightM returns the height in metres.
func (m Measurement) HeightM() float64 {
	return m.HeightCM / 100
}

// Validate checks the ranges the form would otherwise enforce.
// NaN and ±Inf are rejected for every field.
func (m Measurement) Validate() error {
	if !finite(m.HeightCM) || m.HeightCM <= 0 {
		return ErrInvalidHeight
	}
	if !finite(m.WeightKG) || m.WeightKG < 0 {
		return ErrInvalidWeight
	}
	if !finite(m.BodyFatPct) || m.BodyFatPct < 0 || m.BodyFatPct > 100 {
		return ErrInvalidBodyFat
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Indices holds every quantity derived from a Measurement.
type Indices struct {
	BMI      float64 `json:"bmi"`
	LeanMass float64 `json:"lean_mass_kg"`
	FatMass  float64 `json:"fat_mass_kg"`
	FFMI     float64 `json:"ffmi"`
	FMI      float64 `json:"fmi"`
}

// Compute validates m and derives all indices from it.
func Compute(m Measurement) (Indices, error) {
	if err := m.Validate(); err != nil {
		return Indices{}, err
	}
	h := m.HeightM()
	lean := ComputeLeanMass(m.WeightKG, m.BodyFatPct)
	fat := ComputeFatMass(m.WeightKG, m.BodyFatPct)
	idx := Indices{
		BMI:      ComputeBMI(m.HeightCM, m.WeightKG),
		LeanMass: lean,
		FatMass:  fat,
		FFMI:     ComputeFFMI(h, lean),
		FMI:      ComputeFMI(h, fat),
	}
	// A tiny height squares to zero and huge weights overflow.
	for _, v := range []float64{idx.BMI, idx.LeanMass, idx.FatMass, idx.FFMI, idx.FMI} {
		if !finite(v) {
			return Indices{}, ErrIndexOverflow
		}
	}
	return idx, nil
}

// ComputeBMI returns weight / height². Height is in centimetres and must be
// positive; callers guard that.
func ComputeBMI(heightCM, weightKG float64) float64 {
	h := heightCM / 100
	return weightKG / (h * h)
}

// ComputeIdealWeight returns the weight at a BMI of 22 for the given height in metres.
func ComputeIdealWeight(heightM float64) float64 {
	return IdealMass(idealBMI, heightM)
}

// IdealMass returns the mass that yields index at the given height in metres.
func IdealMass(index, heightM float64) float64 {
	return index * heightM * heightM
}

func ComputeLeanMass(weightKG, bodyFatPct float64) float64 {
	return weightKG * (1 - bodyFatPct/100)
}

func ComputeFatMass(weightKG, bodyFatPct float64) float64 {
	return weightKG * (bodyFatPct / 100)
}

// ComputeFFMI returns lean mass / height².
func ComputeFFMI(heightM, leanMassKG float64) float64 {
	return leanMassKG / (heightM * heightM)
}

// ComputeFMI returns fat mass / height².
func ComputeFMI(heightM, fatMassKG float64) float64 {
	return fatMassKG / (heightM * heightM)
}
