package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// BRIDGE_ADDR is the control surface of a running bridge, the suite is skipped without it
	BridgeAddr string `envconfig:"BRIDGE_ADDR"`
	// E2E_RECEIVER_ADDR is where the bridge can reach the test receiver
	ReceiverAddr string `envconfig:"E2E_RECEIVER_ADDR" default:"127.0.0.1:0"`
	// E2E_DEBUG_JSON dumps full request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
