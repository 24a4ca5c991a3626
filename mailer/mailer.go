package mailer

import (
	"io"

	"github.com/samber/oops"
	mail "github.com/wneessen/go-mail"
)

// via https://go-mail.dev/getting-started/introduction/

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Attachment struct {
	Name    string
	Content io.ReadSeeker
}

func (m *Mailer) NewMessage(to string, subject string, body string, attachments ...Attachment) (*mail.Msg, error) {
	oopsBuilder := oops.In("Mailer::NewMessage").With("to", to)
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, oopsBuilder.Wrap(err)
	}
	if err := msg.To(to); err != nil {
		return nil, oopsBuilder.Wrap(err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)
	for _, a := range attachments {
		msg.AttachReadSeeker(a.Name, a.Content)
	}
	return msg, nil
}

func (m *Mailer) Send(to string, subject string, body string, attachments ...Attachment) error {
	oopsBuilder := oops.In("Mailer::Send").With("host", m.Host)
	msg, err := m.NewMessage(to, subject, body, attachments...)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
	}
	if m.Port > 0 {
		opts = append(opts, mail.WithPort(m.Port))
	}
	client, err := mail.NewClient(m.Host, opts...)
	if err != nil {
		return oopsBuilder.Wrap(err)
	}
	defer client.Close()

	if err := client.DialAndSend(msg); err != nil {
		return oopsBuilder.Wrap(err)
	}
	return nil
}
