// Package client builds authenticated Google API clients from
// service-account credentials.
package client

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/google"
)

// New creates an HTTP client authenticated with the given service-account
// key JSON and scopes. The bots run headless, so the interactive OAuth flow
// is never used; a service account shared with the spreadsheet is enough.
func New(credsJSON []byte, scope ...string) (*http.Client, error) {
	conf, err := google.JWTConfigFromJSON(credsJSON, scope...)
	if err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}

	return conf.Client(context.Background()), nil
}
