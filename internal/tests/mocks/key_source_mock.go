package mocks

import (
	"context"
	"errors"
)

type KeySourceMock struct {
	Keys map[string]string
}

func (m *KeySourceMock) GetApiKey(provider string) (string, error) {
	if key, ok := m.Keys[provider]; ok {
		return key, nil
	}
	return "", errors.New("secret not found in keyring")
}

type ConfirmerMock struct {
	Answer bool
	Err    error
	Asked  int
}

func (m *ConfirmerMock) Confirm(context.Context, string, string) (bool, error) {
	m.Asked++
	return m.Answer, m.Err
}
