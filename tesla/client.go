package tesla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Client struct {
	httpClient *http.Client
	config     Config
	token      string
}

// apiResponse wraps every Owner API payload.
type apiResponse struct {
	Response json.RawMessage `json:"response"`
	Error    string          `json:"error,omitempty"`
}

var log = logrus.StandardLogger()

// New creates a client that authenticates with accessToken. No request is
// made; an invalid token only shows up on the first call.
func New(config Config, accessToken string) *Client {
	config = config.withDefaults()
	c := &Client{
		config: config,
		token:  accessToken,
	}
	c.httpClient = &http.Client{
		Timeout: config.Timeout,
		Transport: teslaRoundTripper{
			client: c,
		},
	}
	return c
}

// NewFromRefreshToken exchanges refreshToken for a fresh access token and
// returns a client using it together with the issued token pair.
func NewFromRefreshToken(ctx context.Context, config Config, refreshToken string) (*Client, *Token, error) {
	token, err := Exchange(ctx, config, refreshToken)
	if err != nil {
		return nil, nil, err
	}
	return New(config, token.AccessToken), token, nil
}

func (c *Client) GetConfig() Config {
	return c.config
}

// AccessToken returns the bearer token in use.
func (c *Client) AccessToken() string {
	return c.token
}

// do performs one request against the Owner API and decodes the "response"
// member of the reply into out (if out is not nil).
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := toJson(body)
		if err != nil {
			return err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.OwnerAPIHost+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return getError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	var response apiResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if response.Error != "" {
		return fmt.Errorf("%s", response.Error)
	}
	if err := json.Unmarshal(response.Response, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func toJson[T any](request T) (io.Reader, error) {
	buffer := bytes.NewBuffer(nil)
	err := json.NewEncoder(buffer).Encode(request)
	return buffer, err
}
