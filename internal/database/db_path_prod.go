//go:build prod

package database

import (
	"log"
	"os"
	"path/filepath"
)

// GetDefaultDataDir returns the data directory for production mode.
// In production, data is stored in the user's config directory.
func GetDefaultDataDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: Failed to get user config dir: %v. Using fallback.", err)
		return "userdata"
	}
	return filepath.Join(configDir, "apivault")
}

func IsDevelopment() bool {
	return false
}
