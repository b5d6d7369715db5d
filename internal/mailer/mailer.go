// Package mailer sends templated notification emails over SMTP.
package mailer

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"gopkg.in/mail.v2"
)

//go:embed "templates"
var templateFS embed.FS

// Mailer holds the SMTP dialer and the From address of outgoing mail.
type Mailer struct {
	dialer   *mail.Dialer
	sender   string
	attempts int
	backoff  time.Duration
}

// New returns a Mailer for the given SMTP server. Connections time out after
// five seconds and a failed send is attempted three times in total.
func New(host string, port int, username, password, sender string) Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second
	return Mailer{
		dialer:   dialer,
		sender:   sender,
		attempts: 3,
		backoff:  time.Second,
	}
}

// Message is a rendered email.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Render executes the subject, plainBody and htmlBody templates defined in
// templateFile against data.
func Render(templateFile string, data interface{}) (*Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}
	var subject, plainBody, htmlBody bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, err
	}
	if err := tmpl.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return nil, err
	}
	if err := tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return nil, err
	}
	return &Message{
		Subject:   subject.String(),
		PlainBody: plainBody.String(),
		HTMLBody:  htmlBody.String(),
	}, nil
}

// Send renders templateFile with data and mails it to recipient.
func (m Mailer) Send(recipient, templateFile string, data interface{}) error {
	rendered, err := Render(templateFile, data)
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", rendered.Subject)
	msg.SetBody("text/plain", rendered.PlainBody)
	msg.AddAlternative("text/html", rendered.HTMLBody)
	for i := 1; i <= m.attempts; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		if i < m.attempts {
			time.Sleep(m.backoff)
		}
	}
	return err
}
