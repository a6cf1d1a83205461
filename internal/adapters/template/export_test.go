package template

import "net/http"

// NewRemoteWithClient exposes the client injection for tests.
func NewRemoteWithClient(url string, client *http.Client) *Remote {
	return newRemoteWithClient(url, client)
}
