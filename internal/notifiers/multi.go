package notifiers

import (
	"context"
	"errors"

	"github.com/jurek362/tbh-backend/internal/models"
)

// ActivityNotifier is the event sink implemented by every notifier in
// this package.
type ActivityNotifier interface {
	UserRegistered(ctx context.Context, user *models.UserDB, clientIP string) error
	MessageSent(ctx context.Context, msg *models.MessageDB, recipient string) error
}

// MultiNotifier fans an event out to several notifiers. Every notifier
// is attempted even when an earlier one fails; failures are joined into
// a single error.
type MultiNotifier struct {
	notifiers []ActivityNotifier
}

// NewMulti builds a fan-out notifier.
func NewMulti(notifiers ...ActivityNotifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// UserRegistered forwards the event to every notifier.
func (m *MultiNotifier) UserRegistered(ctx context.Context, user *models.UserDB, clientIP string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.UserRegistered(ctx, user, clientIP); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MessageSent forwards the event to every notifier.
func (m *MultiNotifier) MessageSent(ctx context.Context, msg *models.MessageDB, recipient string) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.MessageSent(ctx, msg, recipient); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
