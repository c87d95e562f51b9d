package records

import (
	"math"
	"time"

	"github.com/olids-ncl/record-explorer/pkg/common/models"
)

// StatusInput holds the five warehouse fields the medication status rules
// read. StatementIsActive is tri-state: nil means the order has no statement
// link or the flag is unrecorded.
type StatusInput struct {
	CancellationDate      *time.Time
	ExpiryDate            *time.Time
	StatementIsActive     *bool
	ClinicalEffectiveDate *time.Time
	DurationDays          *float64
}

// DeriveMedicationStatus evaluates the status rules against the current date.
func DeriveMedicationStatus(in StatusInput) models.MedicationStatus {
	return DeriveMedicationStatusAt(in, time.Now())
}

// DeriveMedicationStatusAt is an ordered decision list; the first matching
// rule wins and the order is load-bearing. An explicit cancellation or expiry
// is authoritative; absence of duration information defaults to Current
// rather than hiding a potentially active medication. Any failure during
// evaluation yields Unknown and is never propagated.
func DeriveMedicationStatusAt(in StatusInput, now time.Time) (status models.MedicationStatus) {
	defer func() {
		if r := recover(); r != nil {
			status = models.StatusUnknown
		}
	}()

	today := dateOnly(now)

	if in.CancellationDate != nil && !dateOnly(*in.CancellationDate).After(today) {
		return models.StatusCancelled
	}

	if in.ExpiryDate != nil && dateOnly(*in.ExpiryDate).Before(today) {
		return models.StatusExpired
	}

	if in.StatementIsActive != nil && !*in.StatementIsActive {
		return models.StatusPast
	}

	if in.ClinicalEffectiveDate != nil && in.DurationDays != nil {
		days := *in.DurationDays
		if math.IsNaN(days) || math.IsInf(days, 0) || days < 0 {
			return models.StatusUnknown
		}
		endDate := dateOnly(*in.ClinicalEffectiveDate).AddDate(0, 0, int(days))
		// The boundary day itself still counts as Current.
		if !today.After(endDate) {
			return models.StatusCurrent
		}
		return models.StatusExpired
	}

	return models.StatusCurrent
}

func statusInput(m models.Medication) StatusInput {
	return StatusInput{
		CancellationDate:      m.CancellationDate,
		ExpiryDate:            m.ExpiryDate,
		StatementIsActive:     m.StatementIsActive,
		ClinicalEffectiveDate: m.ClinicalEffectiveDate,
		DurationDays:          m.DurationDays,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
