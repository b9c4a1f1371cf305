package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/thiagojorgelins/to-do-list/internal/model"
)

// Notifier sends account e-mails.
type Notifier interface {
	Welcome(ctx context.Context, user model.User) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Welcome(context.Context, model.User) error { return nil }

// SendGridNotifier delivers e-mail through the SendGrid v3 API.
type SendGridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridNotifier creates a notifier sending from the given address.
func NewSendGridNotifier(apiKey, from string) *SendGridNotifier {
	return &SendGridNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("To-Do List", from),
	}
}

// newSendGridNotifierWithHost targets a different API host.
func newSendGridNotifierWithHost(apiKey, from, host string) *SendGridNotifier {
	req := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
	req.Method = "POST"
	return &SendGridNotifier{
		client: &sendgrid.Client{Request: req},
		from:   mail.NewEmail("To-Do List", from),
	}
}

func (n *SendGridNotifier) Welcome(ctx context.Context, user model.User) error {
	resp, err := n.client.SendWithContext(ctx, welcomeMessage(n.from, user))
	if err != nil {
		return fmt.Errorf("sending welcome e-mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sending welcome e-mail: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

func welcomeMessage(from *mail.Email, user model.User) *mail.SGMailV3 {
	to := mail.NewEmail(user.Username, user.Email)
	plain := fmt.Sprintf("Hi %s, your account is ready. Log in with %s to start tracking tasks.", user.Username, user.Email)
	html := fmt.Sprintf("<p>Hi %s,</p><p>your account is ready. Log in with <strong>%s</strong> to start tracking tasks.</p>", user.Username, user.Email)
	return mail.NewSingleEmail(from, "Welcome to To-Do List", to, plain, html)
}
