package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jurek362/tbh-backend/internal/logger"
	"github.com/jurek362/tbh-backend/internal/models"
)

// ActivityNotifier receives activity events after successful mutations.
// Handlers invoke it fire-and-forget: a failing notifier never fails or
// rolls back the underlying operation.
type ActivityNotifier interface {
	UserRegistered(ctx context.Context, user *models.UserDB, clientIP string) error
	MessageSent(ctx context.Context, msg *models.MessageDB, recipient string) error
}

const notifyTimeout = 10 * time.Second

// notifyAsync runs fn on its own goroutine with a detached context, so
// notification delivery outlives the request and its failure only gets
// logged.
func notifyAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Log.Warnw("activity notification failed", "err", err)
		}
	}()
}

// clientIP extracts the originating address, preferring the first
// X-Forwarded-For hop set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
