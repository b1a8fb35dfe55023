package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"apivault/internal/models"
)

// DefaultProviderID is used whenever a stored provider id is unknown.
const DefaultProviderID = "glm"

type ProviderService interface {
	ListProviders() ([]models.Provider, error)
	GetProvider(id string) (*models.Provider, error)
	// Resolve never fails: unknown ids fall back to the default provider.
	Resolve(id string) models.Provider
}

type providerService struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Provider
}

type rawProviderFile struct {
	Providers []models.Provider `json:"providers"`
}

// NewProviderService parses the embedded provider catalog (see
// assets.ProvidersData). The catalog must contain the default provider.
func NewProviderService(data []byte) (ProviderService, error) {
	var parsed rawProviderFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse providers asset: %w", err)
	}

	s := &providerService{byID: make(map[string]models.Provider, len(parsed.Providers))}
	for _, p := range parsed.Providers {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			continue
		}
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		if p.DisplayName == "" {
			p.DisplayName = p.ID
		}
		p.Kind = strings.TrimSpace(p.Kind)
		if p.Kind == "" {
			p.Kind = models.ProviderKindOpenAI
		}
		p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate provider %s", p.ID)
		}
		s.byID[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	if _, ok := s.byID[DefaultProviderID]; !ok {
		return nil, fmt.Errorf("provider catalog is missing %s", DefaultProviderID)
	}
	return s, nil
}

func (s *providerService) ListProviders() ([]models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Provider, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *providerService) GetProvider(id string) (*models.Provider, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("provider is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", id)
	}
	return &p, nil
}

func (s *providerService) Resolve(id string) models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.byID[strings.TrimSpace(id)]; ok {
		return p
	}
	return s.byID[DefaultProviderID]
}
