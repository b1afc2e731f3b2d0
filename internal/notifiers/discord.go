package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/jurek362/tbh-backend/internal/models"
)

// Locator resolves a client address to a country for webhook enrichment.
type Locator interface {
	Country(ctx context.Context, ip string) (string, error)
}

// DiscordNotifier posts activity events to a Discord webhook. Message
// content is never included in the payload, only its length.
type DiscordNotifier struct {
	webhookURL string
	locator    Locator
	httpc      *http.Client
}

type discordPayload struct {
	Content string `json:"content"`
}

// NewDiscordNotifier builds a webhook notifier. locator may be nil to
// skip geo enrichment; httpc may be nil for a default 10 second client.
func NewDiscordNotifier(webhookURL string, locator Locator, httpc *http.Client) *DiscordNotifier {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		locator:    locator,
		httpc:      httpc,
	}
}

// UserRegistered announces a new account.
func (n *DiscordNotifier) UserRegistered(ctx context.Context, user *models.UserDB, clientIP string) error {
	location := ""
	if n.locator != nil && clientIP != "" {
		if country, err := n.locator.Country(ctx, clientIP); err == nil {
			location = " from " + country
		}
	}
	content := fmt.Sprintf("New user registered: **%s**%s", user.Username, location)
	return n.post(ctx, content)
}

// MessageSent announces a delivery without leaking the message body.
func (n *DiscordNotifier) MessageSent(ctx context.Context, msg *models.MessageDB, recipient string) error {
	content := fmt.Sprintf("New message for **%s** (%d characters)",
		recipient, utf8.RuneCountInString(msg.Content))
	return n.post(ctx, content)
}

func (n *DiscordNotifier) post(ctx context.Context, content string) error {
	body, err := json.Marshal(discordPayload{Content: content})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
