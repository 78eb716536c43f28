package service

import (
	"time"

	"github.com/clotsync/clotsync-api/internal/models"
)

// Required inter-donation gaps in days. Unknown or unspecified genders use
// the conservative male gap.
const (
	EligibilityGapMaleDays   = 120
	EligibilityGapFemaleDays = 90
)

// RequiredGapDays returns the mandatory waiting period between donations for
// the given gender.
func RequiredGapDays(gender *string) int {
	if gender == nil {
		return EligibilityGapMaleDays
	}
	switch normalizeGender(*gender) {
	case models.GenderFemale:
		return EligibilityGapFemaleDays
	default:
		return EligibilityGapMaleDays
	}
}

// ComputeEligibility derives a donor's eligibility from gender, the last
// donation date and the reference day. It is pure and idempotent; callers
// must re-invoke it whenever lastDonated changes or a decision depends on
// current eligibility, rather than trusting the cached column.
//
// With no donation on record the donor is eligible and has no next-eligible
// date. Otherwise the donor is eligible once the gender-specific gap has
// fully elapsed, boundary inclusive: a male donor whose last donation was
// exactly 120 days ago is eligible today. Write paths reject future
// lastDonated values before they reach storage; given one anyway, the
// negative elapsed count yields not-eligible with nextEligible derived from
// the stored date.
func ComputeEligibility(gender *string, lastDonated *time.Time, today time.Time) (models.EligibilityStatus, *time.Time) {
	if lastDonated == nil {
		return models.Eligible, nil
	}

	gap := RequiredGapDays(gender)
	elapsed := daysBetween(*lastDonated, today)

	if elapsed >= gap {
		return models.Eligible, nil
	}

	next := civilDate(*lastDonated).AddDate(0, 0, gap)
	return models.NotEligible, &next
}

// DaysUntilEligible reports how many days remain before nextEligible,
// clamped at zero.
func DaysUntilEligible(nextEligible *time.Time, today time.Time) int {
	if nextEligible == nil {
		return 0
	}
	days := daysBetween(today, *nextEligible)
	if days < 0 {
		return 0
	}
	return days
}

func daysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

// civilDate strips the clock so that date arithmetic counts whole calendar
// days regardless of the hour either timestamp carries.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeGender(g string) string {
	switch g {
	case "male", "Male", "MALE", "m", "M":
		return models.GenderMale
	case "female", "Female", "FEMALE", "f", "F":
		return models.GenderFemale
	default:
		return models.GenderOther
	}
}
