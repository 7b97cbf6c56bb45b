package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wa-bridge/domain"
	"wa-bridge/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestWebhookSink_Deliver_Success(t *testing.T) {
	req := require.New(t)
	received := make(chan Payload, 1)
	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		headers <- r.Header.Clone()
		received <- p
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	evt := domain.MessageEvent{
		ID:            "msg-1",
		SenderID:      "33600000000@c.us",
		Body:          "hello",
		Type:          domain.MessageTypeVoice,
		ChatID:        "33600000000@c.us",
		VoiceMediaRef: lo.ToPtr("media/voice_1.ogg"),
		Timestamp:     time.Unix(1700000000, 0),
	}

	// When the event is delivered
	status, err := NewWebhookSink(nil).Deliver(context.Background(), server.URL, evt)

	// Then the subscriber got the payload
	req.NoError(err)
	req.Equal(http.StatusNoContent, status)
	header := <-headers
	req.Equal("application/json", header.Get("Content-Type"))
	req.Equal("wa-bridge", header.Get("User-Agent"))
	p := <-received
	req.Equal("33600000000@c.us", p.From)
	req.Equal("hello", p.Body)
	req.Equal("voice", p.Type)
	req.Equal("media/voice_1.ogg", *p.VoiceFilePath)
	req.Nil(p.GroupName)
	req.Equal(int64(1700000000), p.Timestamp)
}

func TestWebhookSink_Deliver_Non_2xx(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	status, err := NewWebhookSink(nil).Deliver(context.Background(), server.URL, domain.MessageEvent{})

	req.ErrorIs(err, errors.ErrDeliveryFailed)
	req.Equal(http.StatusInternalServerError, status)
}

func TestWebhookSink_Deliver_Timeout(t *testing.T) {
	req := require.New(t)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// When the subscriber never answers
	status, err := NewWebhookSink(nil).Deliver(ctx, server.URL, domain.MessageEvent{})

	// Then the deadline turns into a delivery failure
	req.ErrorIs(err, errors.ErrDeliveryFailed)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.Zero(status)
}

func TestWebhookSink_Deliver_Unreachable(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewWebhookSink(nil).Deliver(context.Background(), url, domain.MessageEvent{})

	req.ErrorIs(err, errors.ErrDeliveryFailed)
}

func TestToPayload_Group_Name_Is_Null_When_Absent(t *testing.T) {
	req := require.New(t)

	raw, err := json.Marshal(ToPayload(domain.MessageEvent{ChatID: "1@c.us"}))

	req.NoError(err)
	req.Contains(string(raw), `"groupName":null`)
	req.NotContains(string(raw), "voiceFilePath")
}
