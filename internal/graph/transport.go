package graph

import (
	"fmt"
	"net/http"
	"net/url"
)

// newHTTPClient returns an HTTP client whose HTTPS traffic goes through
// proxyURL. Plain HTTP requests are sent directly. An empty proxyURL keeps the
// environment proxy settings of the default transport.
func newHTTPClient(proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: scheme and host are required", proxyURL)
		}
		transport.Proxy = httpsProxy(u)
	}

	return &http.Client{Transport: transport}, nil
}

// httpsProxy routes only https requests through proxy.
func httpsProxy(proxy *url.URL) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" {
			return proxy, nil
		}
		return nil, nil
	}
}
