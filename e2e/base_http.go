package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *resty.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BridgeAddr == "" {
		s.T().Skip("BRIDGE_ADDR not set, no bridge to test against")
	}
	s.client = resty.New().
		SetBaseURL(strings.TrimRight(s.Config.BridgeAddr, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
}

// Call sends body as JSON (GET when body is nil) and returns the status and raw answer.
func (s *BaseHTTPSuite) Call(name, path string, body any) (int, []byte) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	method := http.MethodGet
	request := s.client.R()
	var raw []byte
	if body != nil {
		method = http.MethodPost
		var err error
		raw, err = json.Marshal(body)
		s.Require().NoError(err)
		request.SetBody(raw)
	}

	start := time.Now()
	response, err := request.Execute(method, path)
	s.Require().NoError(err, "Failed to reach the bridge at "+s.Config.BridgeAddr)
	answer := response.Body()

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, response.StatusCode(), time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", raw, answer)
	}
	s.T().Log(logBuilder.String())
	return response.StatusCode(), answer
}
