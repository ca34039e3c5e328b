package render

import (
	"fmt"
	"time"
)

// Go's time package has no localized names.
var (
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths   = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

// FrenchDate formats t as "lundi 3 mars 2025".
func FrenchDate(t time.Time) string {
	day := fmt.Sprint(t.Day())
	if t.Day() == 1 {
		day = "1er"
	}
	return fmt.Sprintf("%s %s %s %d", frenchWeekdays[t.Weekday()], day, frenchMonths[t.Month()-1], t.Year())
}

// FrenchDateTime formats t as "lundi 3 mars 2025 à 14h30".
func FrenchDateTime(t time.Time) string {
	return fmt.Sprintf("%s à %02dh%02d", FrenchDate(t), t.Hour(), t.Minute())
}

// MeetingTypeLabel returns the French label for a meeting type.
func MeetingTypeLabel(meetingType string) string {
	switch meetingType {
	case "EXTRAORDINARY":
		return "Réunion extraordinaire"
	default:
		return "Réunion ordinaire"
	}
}

// MinuteStatusLabel returns the French label for a minute status.
func MinuteStatusLabel(status string) string {
	switch status {
	case "DRAFT":
		return "Brouillon"
	case "PENDING_SIGNATURE":
		return "En attente de signature"
	case "SIGNED":
		return "Signé"
	case "PUBLISHED":
		return "Publié"
	default:
		return status
	}
}
