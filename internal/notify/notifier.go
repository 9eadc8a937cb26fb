// Package notify turns consumed lifecycle events into emails.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-lifecycle-api/internal/events"
	"github.com/oksasatya/user-lifecycle-api/pkg/mailer"
)

type Notifier struct {
	Sender      mailer.Sender
	CompanyName string
	Logger      *logrus.Logger
}

func NewNotifier(sender mailer.Sender, companyName string, logger *logrus.Logger) *Notifier {
	return &Notifier{Sender: sender, CompanyName: companyName, Logger: logger}
}

func templateFor(kind events.Kind) (string, bool) {
	switch kind {
	case events.KindUserCreated:
		return "welcome", true
	case events.KindUserDeleted:
		return "goodbye", true
	}
	return "", false
}

// Handle is an events.HandlerFunc. Unknown kinds are skipped; a send failure
// is returned so the consumer can redeliver.
func (n *Notifier) Handle(ctx context.Context, evt events.UserEvent) error {
	log := n.Logger.WithFields(logrus.Fields{"kind": evt.Kind, "email": evt.Email})

	name, ok := templateFor(evt.Kind)
	if !ok {
		log.Warn("no mail for event kind")
		return nil
	}
	msg, err := mailer.Render(name, mailer.TemplateData{Email: evt.Email, CompanyName: n.CompanyName})
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := n.Sender.Send(ctx, msg); err != nil {
		return err
	}
	log.WithField("template", name).Info("lifecycle mail sent")
	return nil
}
