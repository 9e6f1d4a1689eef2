// Package roi implements the landing-page ROI calculator: multiplier-based
// arithmetic over team size, rates, and hours spent on positioning busywork.
package roi

import (
	"fmt"
	"math"
)

// weeksPerYear matches the calculator's working-year assumption.
const weeksPerYear = 48

// Inputs are the calculator's knobs.
type Inputs struct {
	// TeamSize is the number of people touching messaging work.
	TeamSize int
	// HourlyRate is the blended cost per person-hour in dollars.
	HourlyRate float64
	// HoursPerWeek is hours per person per week spent on positioning rework.
	HoursPerWeek float64
	// AdoptionMultiplier scales projected savings by how fully the team
	// adopts the tool (0.0 - 1.0).
	AdoptionMultiplier float64
}

// Validate rejects nonsensical inputs before calculation.
func (in Inputs) Validate() error {
	if in.TeamSize < 1 {
		return fmt.Errorf("roi: team size must be at least 1, got %d", in.TeamSize)
	}
	if in.HourlyRate <= 0 {
		return fmt.Errorf("roi: hourly rate must be positive, got %.2f", in.HourlyRate)
	}
	if in.HoursPerWeek < 0 {
		return fmt.Errorf("roi: hours per week cannot be negative, got %.2f", in.HoursPerWeek)
	}
	if in.AdoptionMultiplier < 0 || in.AdoptionMultiplier > 1 {
		return fmt.Errorf("roi: adoption multiplier must be in [0, 1], got %.2f", in.AdoptionMultiplier)
	}
	return nil
}

// Outcome is what the calculator panel displays.
type Outcome struct {
	// WeeklyCost is the current weekly spend on positioning rework.
	WeeklyCost float64
	// AnnualCost is WeeklyCost over the working year.
	AnnualCost float64
	// ProjectedAnnualSavings is AnnualCost scaled by adoption.
	ProjectedAnnualSavings float64
	// PaybackWeeks is how many weeks of savings cover the annual plan
	// price. Zero savings reports +Inf.
	PaybackWeeks float64
}

// Calculate runs the calculator. planAnnualPrice is the yearly subscription
// cost the payback is measured against.
func Calculate(in Inputs, planAnnualPrice float64) (Outcome, error) {
	if err := in.Validate(); err != nil {
		return Outcome{}, err
	}
	if planAnnualPrice < 0 {
		return Outcome{}, fmt.Errorf("roi: plan price cannot be negative, got %.2f", planAnnualPrice)
	}

	weekly := float64(in.TeamSize) * in.HourlyRate * in.HoursPerWeek
	annual := weekly * weeksPerYear
	savings := annual * in.AdoptionMultiplier

	payback := math.Inf(1)
	if savings > 0 {
		payback = planAnnualPrice / (savings / weeksPerYear)
	}

	return Outcome{
		WeeklyCost:             weekly,
		AnnualCost:             annual,
		ProjectedAnnualSavings: savings,
		PaybackWeeks:           payback,
	}, nil
}
