// Package slack is a minimal client for the Slack Web API calls the bridge
// transport needs. It is not a general SDK.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

// Notifier delivers a reply text into a chat channel.
type Notifier interface {
	PostChannelMessage(ctx context.Context, channel, text string) error
}

// Client calls the Slack Web API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ Notifier = (*Client)(nil)

func New(token, baseURL string) *Client {
	return &Client{
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostChannelMessage posts text into a channel via chat.postMessage.
func (c *Client) PostChannelMessage(ctx context.Context, channel, text string) error {
	body, err := json.Marshal(postMessageRequest{Channel: channel, Text: text})
	if err != nil {
		return fmt.Errorf("slack: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: chat.postMessage: %w", err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("slack: decode response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("slack: chat.postMessage failed: %s", apiResp.Error)
	}
	return nil
}

var mentionPattern = regexp.MustCompile(`<@[a-zA-Z0-9]+>`)

// StripMentions removes <@USERID> mention tokens from message text.
func StripMentions(text string) string {
	return mentionPattern.ReplaceAllString(text, "")
}
