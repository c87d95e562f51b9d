// Package format holds the display formatting helpers shared by the record
// views. Everything here is pure string shaping; layout stays client-side.
package format

import (
	"fmt"
	"strings"
	"time"
)

const notAvailable = "N/A"

// Date renders a date as "02 Jan 2006", or N/A when absent.
func Date(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format("02 Jan 2006")
}

// DateTime renders a timestamp as "02 Jan 2006 15:04", or N/A when absent.
func DateTime(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format("02 Jan 2006 15:04")
}

// MonthYear renders approximate dates (birth, death) that only carry month
// precision.
func MonthYear(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format("Jan 2006")
}

// Boolean renders a tri-state flag as Yes/No/N/A.
func Boolean(v *bool) string {
	if v == nil {
		return notAvailable
	}
	if *v {
		return "Yes"
	}
	return "No"
}

// ValueWithUnit joins an observation result with its unit when both exist.
func ValueWithUnit(value *float64, unit *string) string {
	if value == nil {
		return notAvailable
	}
	v := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *value), "0"), ".")
	if unit != nil && *unit != "" {
		return v + " " + *unit
	}
	return v
}

// SafeString dereferences an optional string, mapping nil and empty to N/A.
func SafeString(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}

// PractitionerName renders "Title Last, First" from whichever parts exist.
func PractitionerName(lastName, firstName, title *string) string {
	var parts []string
	if title != nil && *title != "" {
		parts = append(parts, *title)
	}
	if lastName != nil && *lastName != "" {
		parts = append(parts, *lastName)
	}
	name := strings.Join(parts, " ")
	if firstName != nil && *firstName != "" {
		if name == "" {
			return *firstName
		}
		name += ", " + *firstName
	}
	if name == "" {
		return notAvailable
	}
	return name
}

// StatusBadge maps registration flags to the badge text the original views
// show: deceased wins over active, and an inactive reason is appended when
// recorded.
func StatusBadge(isActive, isDeceased *bool, inactiveReason *string) string {
	if isDeceased != nil && *isDeceased {
		return "DECEASED"
	}
	if isActive != nil && *isActive {
		return "ACTIVE"
	}
	if inactiveReason != nil && *inactiveReason != "" {
		return "INACTIVE - " + *inactiveReason
	}
	return "INACTIVE"
}

// Duration renders a planned/actual duration in minutes.
func Duration(minutes *int) string {
	if minutes == nil {
		return notAvailable
	}
	return fmt.Sprintf("%d min", *minutes)
}
