package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivault/internal/assets"
	"apivault/internal/models"
)

func TestProviderService_EmbeddedCatalog(t *testing.T) {
	svc, err := NewProviderService(assets.ProvidersData)
	require.NoError(t, err)

	providers, err := svc.ListProviders()
	require.NoError(t, err)

	ids := make([]string, 0, len(providers))
	for _, p := range providers {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"glm", "openai", "deepseek", "qwen", "doubao", "anthropic", "gemini"}, ids)

	glm, err := svc.GetProvider("glm")
	require.NoError(t, err)
	assert.Equal(t, "https://open.bigmodel.cn/api/paas/v4", glm.BaseURL)
	assert.Equal(t, "glm-4-flash", glm.DefaultModel)
	assert.Equal(t, models.ProviderKindOpenAI, glm.Kind)
}

func TestProviderService_ResolveFallsBackToDefault(t *testing.T) {
	svc, err := NewProviderService(assets.ProvidersData)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", svc.Resolve("deepseek").ID)
	assert.Equal(t, DefaultProviderID, svc.Resolve("nope").ID)
	assert.Equal(t, DefaultProviderID, svc.Resolve("").ID)

	_, err = svc.GetProvider("nope")
	assert.Error(t, err)
	_, err = svc.GetProvider(" ")
	assert.Error(t, err)
}

func TestProviderService_RejectsBadCatalogs(t *testing.T) {
	_, err := NewProviderService([]byte("not json"))
	assert.Error(t, err)

	_, err = NewProviderService([]byte(`{"providers":[{"id":"openai"}]}`))
	assert.Error(t, err, "default provider is mandatory")

	_, err = NewProviderService([]byte(`{"providers":[{"id":"glm"},{"id":"glm"}]}`))
	assert.Error(t, err)

	svc, err := NewProviderService([]byte(`{"providers":[{"id":"glm","baseUrl":"https://x/v1/"}]}`))
	require.NoError(t, err)
	p := svc.Resolve("glm")
	assert.Equal(t, "https://x/v1", p.BaseURL)
	assert.Equal(t, models.ProviderKindOpenAI, p.Kind)
	assert.Equal(t, "glm", p.DisplayName)
}
