package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wa-bridge/domain"
	"wa-bridge/errors"
	"wa-bridge/mocks"
	"wa-bridge/observability"

	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newTestServer(t *testing.T) (*httptest.Server, *mocks.MockIWebhookService) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockIWebhookService(ctrl)
	server := httptest.NewServer(NewServer(logs.GetLoggerFromLevel(slog.LevelDebug), service).Handler())
	t.Cleanup(server.Close)
	return server, service
}

func post(t *testing.T, url, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestServer_Register(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	// Given the service accepts a chat filter
	service.EXPECT().Register("http://a/hook", domain.Filter{ChatID: lo.ToPtr("123@c.us")}).Return(nil)

	// When registering
	status, body := post(t, server.URL+"/register", `{"url":"http://a/hook","filter":{"chatId":"123@c.us"}}`)

	// Then the webhook is registered
	req.Equal(http.StatusOK, status)
	req.Equal("registered", body["status"])
}

func TestServer_Register_Without_Filter(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Register("http://a/hook", domain.Filter{}).Return(nil)

	status, _ := post(t, server.URL+"/register", `{"url":"http://a/hook"}`)
	req.Equal(http.StatusOK, status)
}

func TestServer_Register_With_Filters_Key(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	// Given a client sending its filter under "filters"
	service.EXPECT().Register("http://a/hook", domain.Filter{GroupName: lo.ToPtr("Team")}).Return(nil)

	// When registering
	status, body := post(t, server.URL+"/register", `{"url":"http://a/hook","filters":{"groupName":"Team","chatId":null}}`)

	// Then the group filter is kept
	req.Equal(http.StatusOK, status)
	req.Equal("registered", body["status"])
}

func TestServer_Register_Filter_Wins_Over_Filters(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Register("http://a/hook", domain.Filter{ChatID: lo.ToPtr("123@c.us")}).Return(nil)

	status, _ := post(t, server.URL+"/register",
		`{"url":"http://a/hook","filter":{"chatId":"123@c.us"},"filters":{"groupName":"Team"}}`)
	req.Equal(http.StatusOK, status)
}

func TestServer_Bad_Requests(t *testing.T) {
	tests := []struct {
		description string
		path        string
		body        string
	}{
		{"Should reject register without url", "/register", `{}`},
		{"Should reject malformed JSON", "/register", `{"url":`},
		{"Should reject unregister without url", "/unregister", `{"url":""}`},
		{"Should reject send without recipient", "/send", `{"message":"hi"}`},
		{"Should reject send without message", "/send", `{"to":"33600000000"}`},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			// The service is never reached
			server, _ := newTestServer(t)
			status, body := post(t, server.URL+tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_Error_Mapping(t *testing.T) {
	tests := []struct {
		description string
		err         error
		status      int
	}{
		{"Should map invalid input", fmt.Errorf("%w: not an url", errors.ErrInvalidInput), http.StatusBadRequest},
		{"Should map unknown webhook", fmt.Errorf("%w: http://x", errors.ErrNotFound), http.StatusNotFound},
		{"Should map a failed send", fmt.Errorf("%w: timeout", errors.ErrSendFailed), http.StatusBadGateway},
		{"Should map a session not ready", fmt.Errorf("%w: %w", errors.ErrSendFailed, errors.ErrSessionNotReady), http.StatusServiceUnavailable},
		{"Should map a bad recipient", fmt.Errorf("%w: %w", errors.ErrSendFailed, errors.ErrInvalidInput), http.StatusBadRequest},
		{"Should default to internal error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}

func TestServer_Unregister_Unknown(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Unregister("http://nope").Return(fmt.Errorf("%w: http://nope", errors.ErrNotFound))

	status, body := post(t, server.URL+"/unregister", `{"url":"http://nope"}`)
	req.Equal(http.StatusNotFound, status)
	req.Contains(body["error"], "http://nope")
}

func TestServer_Send(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Send(gomock.Any(), "33600000000", "hello").Return(nil)

	status, body := post(t, server.URL+"/send", `{"to":"33600000000","message":"hello"}`)
	req.Equal(http.StatusOK, status)
	req.Equal("sent", body["status"])
}

func TestServer_Send_Failure(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Send(gomock.Any(), "33600000000", "hello").
		Return(fmt.Errorf("%w: network", errors.ErrSendFailed))

	status, body := post(t, server.URL+"/send", `{"to":"33600000000","message":"hello"}`)
	req.Equal(http.StatusBadGateway, status)
	req.NotEmpty(body["error"])
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	req.NoError(err)
	defer resp.Body.Close()
	var body map[string]string
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("ok", body["status"])
}

func TestServer_Wrong_Method(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/register")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_Webhooks(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	service.EXPECT().List().Return([]domain.Subscriber{
		{URL: "http://a", Filter: domain.Filter{GroupName: lo.ToPtr("Family")}, CreatedAt: createdAt},
		{URL: "http://b", CreatedAt: createdAt},
	})

	resp, err := http.Get(server.URL + "/webhooks")
	req.NoError(err)
	defer resp.Body.Close()

	var body []subscriberResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Len(body, 2)
	req.Equal("http://a", body[0].URL)
	req.Equal("Family", *body[0].GroupName)
	req.Nil(body[0].ChatID)
	req.Equal(createdAt, body[1].CreatedAt)
}

func TestServer_Journal(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	// Given a limit in the query
	service.EXPECT().Journal(lo.ToPtr(2)).Return([]domain.JournalEntry{
		{Kind: domain.JournalSend, Status: domain.StatusOK},
		{Kind: domain.JournalRegister, Status: domain.StatusOK},
	}, nil)

	resp, err := http.Get(server.URL + "/journal?limit=2")
	req.NoError(err)
	defer resp.Body.Close()

	var body []domain.JournalEntry
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Len(body, 2)
	req.Equal(domain.JournalSend, body[0].Kind)
}

func TestServer_Journal_Bad_Limit(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/journal?limit=abc")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Stats(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().Stats().Return(observability.Snapshot{EventsReceived: 3, Subscribers: 1})

	resp, err := http.Get(server.URL + "/stats")
	req.NoError(err)
	defer resp.Body.Close()

	var body observability.Snapshot
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.EqualValues(3, body.EventsReceived)
	req.Equal(1, body.Subscribers)
}
