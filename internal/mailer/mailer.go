// Package mailer delivers transactional email over SMTP. Delivery is
// synchronous: the password-reset flow has to observe a definitive failure
// so it can roll the issued token back.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"gopkg.in/gomail.v2"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func New(host string, port int, username, password, from string) *Mailer {
	if from == "" {
		from = username
	}

	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send dispatches one HTML email, retrying once on a transient SMTP
// failure before giving up.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	const op = "mailer.Send"

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Second))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := dialer.DialAndSend(msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
