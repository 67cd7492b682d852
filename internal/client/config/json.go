package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/shiftbook/internal/flagx"
	"github.com/dmitrijs2005/shiftbook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "5s" or
// as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL       string         `json:"server_base_url"`
	DatabasePath        string         `json:"database_path"`
	PushInterval        timex.Duration `json:"push_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	SaveDebounce        timex.Duration `json:"save_debounce"`
	SavedStatusDelay    timex.Duration `json:"saved_status_delay"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. Absent flags mean no JSON is loaded. Zero values in the
// file leave the current setting untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PushInterval.Duration != 0 {
		cfg.PushInterval = time.Duration(jc.PushInterval.Duration)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.SaveDebounce.Duration != 0 {
		cfg.SaveDebounce = time.Duration(jc.SaveDebounce.Duration)
	}
	if jc.SavedStatusDelay.Duration != 0 {
		cfg.SavedStatusDelay = time.Duration(jc.SavedStatusDelay.Duration)
	}
}
