package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"apivault/internal/models"
)

// ApiTesterService fires one ad-hoc HTTP request against a stored endpoint.
type ApiTesterService struct {
	client  *resty.Client
	context context.Context
	log     zerolog.Logger
}

// NewApiTesterService uses client for every request; nil builds a default
// resty client.
func NewApiTesterService(client *resty.Client, log zerolog.Logger) *ApiTesterService {
	if client == nil {
		client = resty.New()
	}
	return &ApiTesterService{
		client: client,
		log:    log.With().Str("component", "api_tester").Logger(),
	}
}

func (s *ApiTesterService) Startup(ctx context.Context) {
	s.context = ctx
}

// Prefill returns the request a test of api starts from.
func (s *ApiTesterService) Prefill(api models.ApiRecord) (models.ApiTestRequest, error) {
	headers := "{}"
	if api.Key != "" {
		data, err := json.MarshalIndent(map[string]string{"Authorization": "Bearer " + api.Key}, "", "  ")
		if err != nil {
			return models.ApiTestRequest{}, err
		}
		headers = string(data)
	}
	return models.ApiTestRequest{
		Method:  http.MethodGet,
		URL:     api.URL,
		Headers: headers,
		Body:    "{}",
	}, nil
}

func (s *ApiTesterService) Run(req models.ApiTestRequest) (models.ApiTestResult, error) {
	ctx := s.context
	if ctx == nil {
		ctx = context.Background()
	}
	return s.RunContext(ctx, req)
}

// RunContext validates req and sends it. Non-2xx statuses are results; only
// invalid input and transport failures are errors.
func (s *ApiTesterService) RunContext(ctx context.Context, req models.ApiTestRequest) (models.ApiTestResult, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return models.ApiTestResult{}, fmt.Errorf("url is required")
	}

	headers, err := parseHeaders(req.Headers)
	if err != nil {
		return models.ApiTestResult{}, err
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		body = "{}"
	}
	if !json.Valid([]byte(body)) {
		return models.ApiTestResult{}, ErrInvalidBody
	}

	r := s.client.R().SetContext(ctx)
	if method != http.MethodGet {
		r.SetHeader("Content-Type", "application/json").SetBody([]byte(body))
	}
	r.SetHeaders(headers)

	resp, err := r.Execute(method, url)
	if err != nil {
		s.log.Warn().Err(err).Str("method", method).Str("url", url).Msg("api test failed")
		return models.ApiTestResult{}, fmt.Errorf("%s %s: %w", method, url, err)
	}

	s.log.Debug().Str("method", method).Str("url", url).Int("status", resp.StatusCode()).Msg("api test finished")
	return models.ApiTestResult{
		Status:   resp.StatusCode(),
		Response: prettyBody(resp.Body()),
	}, nil
}

func parseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]string{}, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, ErrInvalidHeaders
	}
	headers := make(map[string]string, len(decoded))
	for k, v := range decoded {
		switch val := v.(type) {
		case nil:
		case string:
			headers[k] = val
		default:
			headers[k] = fmt.Sprint(val)
		}
	}
	return headers, nil
}

func prettyBody(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
