package models

// Provider kinds select which chat client talks to a provider.
const (
	ProviderKindOpenAI    = "openai"
	ProviderKindAnthropic = "anthropic"
	ProviderKindGemini    = "gemini"
)

// Provider describes an LLM vendor the chat client can talk to.
type Provider struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Kind         string `json:"kind"`
	BaseURL      string `json:"baseUrl"`
	DefaultModel string `json:"defaultModel"`
	KeyHelpURL   string `json:"keyHelpUrl,omitempty"`
}
