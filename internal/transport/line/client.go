package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.line.me"

// maxReplyMessages is the reply API's per-call message limit.
const maxReplyMessages = 5

// Client calls the LINE Messaging API reply endpoint.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Client with the channel access token.
func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultAPIBase,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// Reply sends up to five text messages against a reply token. Messages
// beyond the API limit are dropped.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	if len(messages) > maxReplyMessages {
		messages = messages[:maxReplyMessages]
	}

	body := replyRequest{ReplyToken: replyToken}
	for _, m := range messages {
		body.Messages = append(body.Messages, textMessage{Type: "text", Text: m})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode reply: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/bot/message/reply", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("reply API returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
