package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier delivers verification codes over SMTP
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmail(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, destination string, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", destination)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>Your verification code: <strong>%s</strong></p><p>The code expires shortly, enter it right away.</p>",
		code,
	))

	// gomail knows nothing about contexts, so the dial-and-send runs on its
	// own goroutine and the caller's deadline is enforced here. On timeout
	// the goroutine is abandoned to finish or fail on its own.
	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("error while sending email. Err: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email to %s abandoned. Err: %w", destination, ctx.Err())
	}
}
