package emailoctopus

type contactResponse struct {
	ID           string         `json:"id"`
	EmailAddress string         `json:"email_address"`
	Fields       map[string]any `json:"fields"`
	Tags         []string       `json:"tags,omitempty"`
	Status       string         `json:"status"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

type createContactRequest struct {
	EmailAddress string            `json:"email_address"`
	Fields       map[string]string `json:"fields,omitempty"`
}

type updateContactRequest struct {
	Fields map[string]string `json:"fields"`
}
