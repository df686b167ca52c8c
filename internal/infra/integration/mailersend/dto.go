package mailersend

type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	Email string         `json:"email"`
	Data  map[string]any `json:"data"`
}

type emailRequest struct {
	From            Recipient         `json:"from"`
	To              []Recipient       `json:"to"`
	Subject         string            `json:"subject,omitempty"`
	Text            string            `json:"text,omitempty"`
	TemplateID      string            `json:"template_id,omitempty"`
	Personalization []personalization `json:"personalization,omitempty"`
}
