package models

// Well-known settings keys. Settings may carry any other key as well.
const (
	SettingAPIKey       = "apiKey"
	SettingModel        = "model"
	SettingTheme        = "theme"
	SettingLanguage     = "language"
	SettingProvider     = "provider"
	SettingSystemPrompt = "systemPrompt"
)

// Settings is the singleton settings object. It stays a plain JSON object so
// keys written by newer frontends survive a round trip.
type Settings map[string]any

// DefaultSettings returns the values a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		SettingAPIKey:   "",
		SettingModel:    "glm-4-flash",
		SettingTheme:    "light",
		SettingLanguage: "zh",
		SettingProvider: "glm",
	}
}

// Merge returns a new Settings holding s overlaid with patch. Keys present in
// patch win; keys absent from patch are preserved.
func (s Settings) Merge(patch Settings) Settings {
	out := make(Settings, len(s)+len(patch))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// String returns the value under key when it is a string, else "".
func (s Settings) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

func (s Settings) APIKey() string       { return s.String(SettingAPIKey) }
func (s Settings) Model() string        { return s.String(SettingModel) }
func (s Settings) Theme() string        { return s.String(SettingTheme) }
func (s Settings) Language() string     { return s.String(SettingLanguage) }
func (s Settings) Provider() string     { return s.String(SettingProvider) }
func (s Settings) SystemPrompt() string { return s.String(SettingSystemPrompt) }
