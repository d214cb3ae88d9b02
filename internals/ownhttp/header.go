package ownhttp

import "net/http"

// AddHeaderTransport sets the User-Agent header on every request
type AddHeaderTransport struct {
	T http.RoundTripper
}

func (adt *AddHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		// RoundTrip should not modify the request
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return adt.T.RoundTrip(req)
}

// NewAddHeaderTransport wraps T. http.DefaultTransport is used if T is nil
func NewAddHeaderTransport(T http.RoundTripper) *AddHeaderTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &AddHeaderTransport{T}
}
