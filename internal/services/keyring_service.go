package services

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringServiceName = "apivault"

// KeyringService keeps provider API keys in the OS keychain as an
// alternative to the plain-text apiKey setting.
type KeyringService struct {
	providers ProviderService
}

func NewKeyringService(providers ProviderService) *KeyringService {
	return &KeyringService{providers: providers}
}

func (s *KeyringService) validProvider(provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if _, err := s.providers.GetProvider(provider); err != nil {
		return "", err
	}
	return provider, nil
}

func (s *KeyringService) StoreApiKey(provider string, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return errors.New("API key is empty")
	}
	provider, err := s.validProvider(provider)
	if err != nil {
		return err
	}
	return keyring.Set(keyringServiceName, provider, apiKey)
}

func (s *KeyringService) GetApiKey(provider string) (string, error) {
	provider, err := s.validProvider(provider)
	if err != nil {
		return "", err
	}
	return keyring.Get(keyringServiceName, provider)
}

// DeleteApiKey removes the stored key. Deleting a key that was never stored
// is not an error.
func (s *KeyringService) DeleteApiKey(provider string) error {
	provider, err := s.validProvider(provider)
	if err != nil {
		return err
	}
	err = keyring.Delete(keyringServiceName, provider)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// ListApiKeys reports which catalog providers have a key stored. Keys
// themselves are never returned.
func (s *KeyringService) ListApiKeys() ([]map[string]string, error) {
	providers, err := s.providers.ListProviders()
	if err != nil {
		return nil, err
	}

	results := []map[string]string{}
	for _, p := range providers {
		if _, err := keyring.Get(keyringServiceName, p.ID); err != nil {
			continue
		}
		results = append(results, map[string]string{
			"provider":    p.ID,
			"label":       p.DisplayName + " API key",
			"description": "API key for " + p.DisplayName + " used by API Vault",
		})
	}
	return results, nil
}
