package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tokenIssuer = "tinylink"
	tokenTTL    = 5 * time.Minute
)

// AuthOptions selects how requests to the collector are authorized.
// Client credentials win over a signing secret; with neither, requests go out unauthenticated.
type AuthOptions struct {
	ClientID      string
	ClientSecret  string
	TokenURL      string
	Scopes        []string
	SigningSecret string
}

func newAuthorizedClient(ctx context.Context, auth AuthOptions) *http.Client {
	switch {
	case auth.ClientID != "" && auth.TokenURL != "":
		cfg := clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     auth.TokenURL,
			Scopes:       auth.Scopes,
		}
		return cfg.Client(ctx)
	case auth.SigningSecret != "":
		src := oauth2.ReuseTokenSource(nil, &signedTokenSource{secret: []byte(auth.SigningSecret), now: time.Now})
		return oauth2.NewClient(ctx, src)
	default:
		return &http.Client{}
	}
}

// signedTokenSource mints short-lived HS256 bearer tokens
type signedTokenSource struct {
	secret []byte
	now    func() time.Time
}

func (s *signedTokenSource) Token() (*oauth2.Token, error) {
	now := s.now()
	expiry := now.Add(tokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "telemetry",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		Expiry:      expiry,
	}, nil
}
