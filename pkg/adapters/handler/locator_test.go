package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

func TestHeaderLocator(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"nothing", nil, ""},
		{"cloudflare country", map[string]string{headerCFCountry: "TH"}, "TH"},
		{"unknown cloudflare falls back", map[string]string{headerCFCountry: "XX", headerCountry: "DE"}, "DE"},
		{"city and country", map[string]string{headerCountry: "JP", headerCity: "Osaka"}, "Osaka, JP"},
		{"city only", map[string]string{headerCity: "Lyon"}, "Lyon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HeaderLocator{}.Locate(context.Background(), domain.Visit{Headers: tt.headers})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
