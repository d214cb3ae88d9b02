package ownhttp

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every request made through clients of this package
var UserAgent = "xcraft/dev (+https://github.com/xcraft/xcraft)"

// Options configure the client returned by New
type Options struct {
	// RequestsPerSecond limits outgoing requests. 0 disables the limit
	RequestsPerSecond float64
	// Burst is the amount of requests allowed to exceed the limit at once
	Burst int
}

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
// and a ThrottleTransport if a request limit is set
func New(opts Options) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   32,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		transport = NewThrottleTransport(transport, rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst))
	}

	return &http.Client{Transport: NewAddHeaderTransport(transport)}
}
