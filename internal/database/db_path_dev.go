//go:build !prod

package database

// GetDefaultDataDir returns the data directory for development mode.
// In dev mode, data lives in ./userdata next to the binary's working
// directory for easy inspection.
func GetDefaultDataDir() string {
	return "userdata"
}

func IsDevelopment() bool {
	return true
}
