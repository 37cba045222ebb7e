package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/aivise/portal-session/internal/flagx"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are strings in time.ParseDuration syntax ("15s", "2m").
type jsonConfig struct {
	GatewayAddr    string `json:"gateway_addr"`
	RequestTimeout string `json:"request_timeout"`
	LogLevel       string `json:"log_level"`
	LogPretty      *bool  `json:"log_pretty"`
}

// parseJSON overlays Config with values from the JSON file named by the
// -c/-config flag. Absent flag means no JSON is loaded. Read or parse
// errors panic; this runs once at startup.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.GatewayAddr != "" {
		cfg.GatewayAddr = jc.GatewayAddr
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogPretty != nil {
		cfg.LogPretty = *jc.LogPretty
	}
}
