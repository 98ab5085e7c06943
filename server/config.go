package server

import (
	"os"
	"strconv"
)

// Config holds the interactive viewer settings. Environment variables
// override the defaults; command-line flags override both.
type Config struct {
	Port        int  // REPLAY_PORT
	FillAxes    bool // REPLAY_FILL_AXES: data fills the canvas, no grid chrome
	HeightPx    int  // REPLAY_HEIGHT_PX
	HideToolbar bool // REPLAY_HIDE_TOOLBAR: hide the key-binding bar on the page
}

// LoadConfig reads the viewer configuration from the environment.
func LoadConfig() Config {
	return Config{
		Port:        getEnvInt("REPLAY_PORT", 8988),
		FillAxes:    getEnvInt("REPLAY_FILL_AXES", 1) != 0,
		HeightPx:    getEnvInt("REPLAY_HEIGHT_PX", 740),
		HideToolbar: getEnvInt("REPLAY_HIDE_TOOLBAR", 0) != 0,
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
