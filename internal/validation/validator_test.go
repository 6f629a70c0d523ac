package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reelfeed/reelfeed-server/internal/errors"
	"github.com/reelfeed/reelfeed-server/internal/validation"
)

type upstreamSettings struct {
	BaseURL string `env:"UPSTREAM_BASE_URL" validate:"required,http_url"`
	RPS     int    `env:"UPSTREAM_RPS" validate:"gt=0"`
	Mode    string `json:"mode" validate:"oneof=fast slow"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	err := v.Validate(upstreamSettings{BaseURL: "https://example.com/api", RPS: 3, Mode: "fast"})
	assert.NoError(t, err)
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		in        upstreamSettings
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing url",
			in:        upstreamSettings{RPS: 1, Mode: "fast"},
			wantField: "UPSTREAM_BASE_URL",
			wantMsg:   "is required",
		},
		{
			name:      "not a url",
			in:        upstreamSettings{BaseURL: "nope", RPS: 1, Mode: "fast"},
			wantField: "UPSTREAM_BASE_URL",
			wantMsg:   "must be a valid URL",
		},
		{
			name:      "zero rps",
			in:        upstreamSettings{BaseURL: "http://x.test", Mode: "slow"},
			wantField: "UPSTREAM_RPS",
			wantMsg:   "must be greater than 0",
		},
		{
			name:      "json tag name",
			in:        upstreamSettings{BaseURL: "http://x.test", RPS: 1, Mode: "medium"},
			wantField: "mode",
			wantMsg:   "must be one of: fast slow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Contains(t, domainErr.Message, tt.wantField)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
