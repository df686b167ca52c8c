package airtable

// Column names of the subscribers table.
const (
	FieldFirstName          = "First Name"
	FieldLastName           = "Last Name"
	FieldEmail              = "Email"
	FieldPhone              = "Phone number"
	FieldDeliveryPreference = "Delivery Preference"
	FieldCampaignInterest   = "Campaign Interest"
	FieldSubscribedDate     = "Subscribed Date"
	FieldSource             = "Source"
	FieldStatus             = "Status"
	FieldWhySubscribe       = "whysubscribe"
)

type recordFields map[string]any

type record struct {
	ID          string       `json:"id"`
	CreatedTime string       `json:"createdTime,omitempty"`
	Fields      recordFields `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
}

type writeRequest struct {
	Fields recordFields `json:"fields"`
}

func (f recordFields) setString(key, value string) {
	if value != "" {
		f[key] = value
	}
}

func (f recordFields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f recordFields) strs(key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
