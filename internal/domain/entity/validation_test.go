package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "valid https URL",
			url:     "https://example.com/feed",
			wantErr: false,
		},
		{
			name:    "valid http URL",
			url:     "http://example.com/feed",
			wantErr: false,
		},
		{
			name:    "valid URL with port",
			url:     "http://127.0.0.1:8080/feed",
			wantErr: false,
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "ftp scheme",
			url:     "ftp://example.com/feed",
			wantErr: true,
		},
		{
			name:    "missing host",
			url:     "https:///feed",
			wantErr: true,
		},
		{
			name:    "unparseable URL",
			url:     "http://[::1",
			wantErr: true,
		},
		{
			name:    "too long",
			url:     "https://example.com/" + strings.Repeat("a", maxURLLength),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr), "expected ValidationError, got %T", err)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "url", Message: "URL is required"}
	assert.Equal(t, "validation error on field 'url': URL is required", err.Error())
}
