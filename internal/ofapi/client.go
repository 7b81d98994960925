package ofapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chatter-insights-go/internal/logger"
)

// Client is a thin OFAPI wrapper. The upstream payloads are treated as
// untrusted, loosely-typed documents; see extract.go for the ordered
// field-resolution rules.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Chat is one conversation summary from the chats listing.
type Chat struct {
	ID      string
	FanName string
}

// Message is one raw chat message. Fields missing upstream default to
// zero values, never an error.
type Message struct {
	Text      string
	FromID    string
	CreatedAt time.Time
}

// ListChats returns up to limit most-recently-active conversations for
// an account.
func (c *Client) ListChats(ctx context.Context, accountID, token string, limit int) ([]Chat, error) {
	endpoint := fmt.Sprintf("%s/api/%s/chats?limit=%d&offset=0&order=recent&skip_users=none",
		c.baseURL, url.PathEscape(accountID), limit)
	doc, err := c.getJSON(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	var chats []Chat
	for _, item := range documentList(doc) {
		id := chatID(item)
		if id == "" {
			continue
		}
		chats = append(chats, Chat{ID: id, FanName: fanName(item)})
		if len(chats) >= limit {
			break
		}
	}
	return chats, nil
}

// ChatMessages returns up to limit recent messages in one conversation.
// Ordering is whatever the API returned; callers sort.
func (c *Client) ChatMessages(ctx context.Context, accountID, chatID, token string, limit int) ([]Message, error) {
	endpoint := fmt.Sprintf("%s/api/%s/chats/%s/messages?limit=%d&order=desc&skip_users=all",
		c.baseURL, url.PathEscape(accountID), url.PathEscape(chatID), limit)
	doc, err := c.getJSON(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}

	var msgs []Message
	for _, item := range documentList(doc) {
		msgs = append(msgs, Message{
			Text:      stringField(item, "text"),
			FromID:    senderID(item),
			CreatedAt: timeField(item, "createdAt"),
		})
	}
	return msgs, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, token string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		logger.New().WithField("component", "ofapi").
			WithField("status", resp.StatusCode).
			Debug("ofapi error body: " + truncate(string(body), 300))
		return nil, fmt.Errorf("ofapi status %d", resp.StatusCode)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("ofapi decode: %w", err)
	}
	return doc, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
