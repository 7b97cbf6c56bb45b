package sink

import (
	"context"
	"fmt"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"

	"github.com/go-resty/resty/v2"
)

var _ contract.WebhookSink = (*WebhookSink)(nil)

const userAgent = "wa-bridge"

// Payload is the body POSTed to every matching webhook.
type Payload struct {
	ID            string  `json:"id"`
	From          string  `json:"from"`
	Author        string  `json:"author,omitempty"`
	Body          string  `json:"body"`
	Type          string  `json:"type"`
	ChatID        string  `json:"chatId"`
	IsGroup       bool    `json:"isGroup"`
	GroupName     *string `json:"groupName"`
	Timestamp     int64   `json:"timestamp"`
	VoiceFilePath *string `json:"voiceFilePath,omitempty"`
}

// WebhookSink makes exactly one POST attempt per call, no retry.
type WebhookSink struct {
	client *resty.Client
}

// NewWebhookSink configures client for JSON delivery. The caller bounds
// every call with a context deadline.
func NewWebhookSink(client *resty.Client) *WebhookSink {
	if client == nil {
		client = resty.New()
	}
	client.
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent)
	return &WebhookSink{client: client}
}

// Deliver returns the HTTP status code when a response was received.
// Anything but a 2xx is ErrDeliveryFailed.
func (s *WebhookSink) Deliver(ctx context.Context, url string, evt domain.MessageEvent) (int, error) {
	response, err := s.client.R().
		SetContext(ctx).
		SetBody(ToPayload(evt)).
		Post(url)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrDeliveryFailed, err)
	}
	if !response.IsSuccess() {
		return response.StatusCode(), fmt.Errorf("%w: %s answered %d", errors.ErrDeliveryFailed, url, response.StatusCode())
	}
	return response.StatusCode(), nil
}

func ToPayload(evt domain.MessageEvent) Payload {
	p := Payload{
		ID:            evt.ID,
		From:          evt.SenderID,
		Author:        evt.Author,
		Body:          evt.Body,
		Type:          string(evt.Type),
		ChatID:        evt.ChatID,
		IsGroup:       evt.IsGroup,
		GroupName:     evt.GroupName,
		VoiceFilePath: evt.VoiceMediaRef,
	}
	if !evt.Timestamp.IsZero() {
		p.Timestamp = evt.Timestamp.Unix()
	} else {
		p.Timestamp = time.Now().Unix()
	}
	return p
}
