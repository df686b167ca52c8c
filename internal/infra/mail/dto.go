package mail

type OptInEmailData struct {
	FirstName  string
	Email      string
	ConfirmURL string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	AlertTo  string
	OptInURL string
	dialer   messageDialer
}
