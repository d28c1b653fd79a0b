// Package httputil centralizes HTTP client construction for outbound calls
// such as the remote model server.
package httputil

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every outbound request end to end, including body
// reads. Callers that need longer must build their own client.
const DefaultTimeout = 30 * time.Second

func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}
