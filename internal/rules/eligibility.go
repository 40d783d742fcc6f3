package rules

import (
	"fmt"
	"time"
)

// RequiredWaitDays is the minimum gap between two whole-blood donations
const RequiredWaitDays = 56

// Eligibility is the result of checking whether a donor may donate
type Eligibility struct {
	Eligible              bool       `json:"eligible"`
	Message               string     `json:"message"`
	DaysSinceLastDonation *int       `json:"daysSinceLastDonation,omitempty"`
	DaysRemaining         *int       `json:"daysRemaining,omitempty"`
	NextEligibleDate      *time.Time `json:"nextEligibleDate,omitempty"`
}

// NextEligibleDate is always lastDonation + 56 days
func NextEligibleDate(lastDonation time.Time) time.Time {
	return lastDonation.AddDate(0, 0, RequiredWaitDays)
}

// CheckEligibility decides whether a donor whose last donation was at
// lastDonation (nil when they never donated) may donate at now.
func CheckEligibility(lastDonation *time.Time, now time.Time) Eligibility {
	if lastDonation == nil || lastDonation.IsZero() {
		return Eligibility{
			Eligible: true,
			Message:  "You are eligible to donate blood.",
		}
	}

	daysSince := int(now.Sub(*lastDonation) / (24 * time.Hour))
	next := NextEligibleDate(*lastDonation)

	if daysSince >= RequiredWaitDays {
		return Eligibility{
			Eligible:              true,
			Message:               fmt.Sprintf("You are eligible to donate. Your last donation was %d days ago.", daysSince),
			DaysSinceLastDonation: &daysSince,
			NextEligibleDate:      &next,
		}
	}

	remaining := RequiredWaitDays - daysSince
	return Eligibility{
		Eligible:              false,
		Message:               fmt.Sprintf("You can donate again in %s.", pluralDays(remaining)),
		DaysSinceLastDonation: &daysSince,
		DaysRemaining:         &remaining,
		NextEligibleDate:      &next,
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
