package entity

import (
	"strings"
	"time"
)

type DeliveryPreference string

const (
	DeliveryEmail DeliveryPreference = "Email"
	DeliveryText  DeliveryPreference = "Text"
	DeliveryBoth  DeliveryPreference = "Both"
)

const (
	StatusPending = "Pending"
	DefaultSource = "Direct"

	// PivotYearTag in CampaignInterest turns on the PivotYear list flag.
	PivotYearTag = "Pivot Year"
)

// ParseDeliveryPreference only accepts the exact enum values, untrimmed and
// case-sensitive; anything else is dropped.
func ParseDeliveryPreference(raw string) (DeliveryPreference, bool) {
	switch p := DeliveryPreference(raw); p {
	case DeliveryEmail, DeliveryText, DeliveryBoth:
		return p, true
	}
	return "", false
}

// Subscriber is the record-store row. Empty fields mean "unset" everywhere,
// so the same struct is used as a merge-patch.
type Subscriber struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	DeliveryPreference DeliveryPreference
	CampaignInterest   []string
	SubscribedDate     string
	Source             string
	Status             string
	WhySubscribe       string
}

func (s *Subscriber) HasTag(tag string) bool {
	for _, t := range s.CampaignInterest {
		if t == tag {
			return true
		}
	}
	return false
}

// IsEmptyUpdate is IsEmptyPatch ignoring Email, which an update only repeats
// from the lookup.
func (s *Subscriber) IsEmptyUpdate() bool {
	rest := *s
	rest.Email = ""
	return rest.IsEmptyPatch()
}

// IsEmptyPatch reports whether s carries nothing to write.
func (s *Subscriber) IsEmptyPatch() bool {
	return s.FirstName == "" &&
		s.LastName == "" &&
		s.Email == "" &&
		s.Phone == "" &&
		s.DeliveryPreference == "" &&
		len(s.CampaignInterest) == 0 &&
		s.SubscribedDate == "" &&
		s.Source == "" &&
		s.Status == "" &&
		s.WhySubscribe == ""
}

// NormalizeEmail is the identity key used when matching against both stores.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatTimestamp matches the ISO-8601 millisecond format the record store already holds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
