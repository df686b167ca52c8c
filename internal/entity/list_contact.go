package entity

// List-store custom field names.
const (
	ListFieldFirstName          = "FirstName"
	ListFieldLastName           = "LastName"
	ListFieldPhone              = "Phone"
	ListFieldDeliveryPreference = "DeliveryPreference"
	ListFieldPivotYear          = "PivotYear"
)

type ListContact struct {
	ID     string
	Email  string
	Status string
	Fields map[string]string
}

// MirrorFields derives the list-store field set from a subscriber.
// Tags and status are never mirrored.
func MirrorFields(s *Subscriber) map[string]string {
	fields := make(map[string]string)
	if s.FirstName != "" {
		fields[ListFieldFirstName] = s.FirstName
	}
	if s.LastName != "" {
		fields[ListFieldLastName] = s.LastName
	}
	if s.Phone != "" {
		fields[ListFieldPhone] = s.Phone
	}
	if s.DeliveryPreference != "" {
		fields[ListFieldDeliveryPreference] = string(s.DeliveryPreference)
	}
	if s.HasTag(PivotYearTag) {
		fields[ListFieldPivotYear] = "yes"
	}
	return fields
}
