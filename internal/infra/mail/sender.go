package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var optInTemplate = template.Must(template.ParseFS(templateFS, "templates/optin.html"))

type messageDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// NewEmailSender is the SMTP mailer used when no MailerSend key is configured.
func NewEmailSender(host string, port int, user, password, from, fromName, alertTo, optInURL string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		FromName: fromName,
		AlertTo:  alertTo,
		OptInURL: optInURL,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendOptIn(ctx context.Context, to, firstName string) error {
	body, err := renderOptIn(OptInEmailData{
		FirstName:  firstName,
		Email:      to,
		ConfirmURL: s.confirmURL(to),
	})
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetAddressHeader("To", to, firstName)
	m.SetHeader("Subject", "Please confirm your subscription")
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp opt-in to %s: %w", to, err)
	}
	return nil
}

func (s *EmailSender) SendAlert(ctx context.Context, subject, text string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetHeader("To", s.AlertTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp alert: %w", err)
	}
	return nil
}

func renderOptIn(data OptInEmailData) (string, error) {
	var body bytes.Buffer
	if err := optInTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render opt-in template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) confirmURL(email string) string {
	if s.OptInURL == "" {
		return ""
	}
	u, err := url.Parse(s.OptInURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String()
}
