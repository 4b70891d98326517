package tesla

import (
	"net/http"
)

type teslaRoundTripper struct {
	inner  http.RoundTripper
	client *Client
}

func (t teslaRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request
	req := request.Clone(request.Context())

	token := t.client.AccessToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", UserAgent)

	inner := t.inner
	if inner == nil {
		inner = http.DefaultTransport
	}

	log.Debugf("%s %s", req.Method, req.URL.Path)
	response, err := inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s %s -> %s", req.Method, req.URL.Path, response.Status)
	return response, nil
}

var _ http.RoundTripper = &teslaRoundTripper{}
