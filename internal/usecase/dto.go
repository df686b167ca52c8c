package usecase

// SubscribeInput keeps the signup form's field names as-is, including the
// capitalised DeliveryPreference and CampaignInterest keys.
type SubscribeInput struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	EmailAddress       string `json:"emailAddress"`
	PhoneNumber        string `json:"phoneNumber"`
	DeliveryPreference string `json:"DeliveryPreference"`
	CampaignInterest   string `json:"CampaignInterest"`
	Source             string `json:"source"`
}

const (
	StatusCreated = "created"
	StatusUpdated = "updated"
)

type SubscribeOutput struct {
	Status string `json:"status"`
}

type SurveyInput struct {
	Email     string `json:"email"`
	CheckOnly bool   `json:"checkOnly"`
	Response  string `json:"response"`
}

const StatusSubmitted = "submitted"

// SurveyOutput carries either Found (lookup outcomes) or Status (write outcome).
type SurveyOutput struct {
	Found  *bool  `json:"found,omitempty"`
	Status string `json:"status,omitempty"`
}

func found(v bool) *SurveyOutput {
	return &SurveyOutput{Found: &v}
}
