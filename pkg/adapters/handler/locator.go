package handler

import (
	"context"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

const (
	headerCFCountry = "CF-IPCountry"
	headerCountry   = "X-Country"
	headerCity      = "X-City"
)

// HeaderLocator derives a coarse location from headers set by the edge proxy
type HeaderLocator struct{}

var _ ports.Locator = HeaderLocator{}

// Locate returns "City, Country", "Country" or "" when the proxy sent nothing
func (HeaderLocator) Locate(_ context.Context, v domain.Visit) (string, error) {
	country := v.Headers[headerCFCountry]
	if country == "" || country == "XX" {
		country = v.Headers[headerCountry]
	}
	city := v.Headers[headerCity]

	switch {
	case city != "" && country != "":
		return city + ", " + country, nil
	case country != "":
		return country, nil
	default:
		return city, nil
	}
}
