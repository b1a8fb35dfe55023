package services

import (
	"context"
	"errors"
	"strings"

	"apivault/internal/models"
	"apivault/internal/storage"
)

type AppSettingsService interface {
	GetAppSettings() (models.Settings, error)
	UpdateAppearance(theme, language string) (models.Settings, error)
	Startup(ctx context.Context)
}

type appSettingsService struct {
	store   storage.Store
	context context.Context
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
}

func NewAppSettingsService(store storage.Store) AppSettingsService {
	return &appSettingsService{store: store}
}

func (s *appSettingsService) ctx() context.Context {
	if s.context == nil {
		return context.Background()
	}
	return s.context
}

func (s *appSettingsService) GetAppSettings() (models.Settings, error) {
	return s.store.GetSettings(s.ctx())
}

func (s *appSettingsService) UpdateAppearance(theme, language string) (models.Settings, error) {
	theme = strings.TrimSpace(theme)
	language = strings.TrimSpace(language)
	if theme == "" {
		return nil, errors.New("theme is required")
	}
	if language == "" {
		return nil, errors.New("language is required")
	}
	if theme != "light" && theme != "dark" && theme != "system" {
		return nil, errors.New("theme must be 'light', 'dark', or 'system'")
	}

	patch := models.Settings{
		models.SettingTheme:    theme,
		models.SettingLanguage: language,
	}
	if err := s.store.SaveSettings(s.ctx(), patch); err != nil {
		return nil, err
	}
	return s.store.GetSettings(s.ctx())
}
