package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/fault"
)

const (
	DefaultBaseURL = "http://covid19-kerala-api.herokuapp.com/api/location"

	// date query parameter layout, DD-MM-YYYY
	queryDateLayout = "02-01-2006"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient means no timeout,
// matching the upstream's behavior of waiting indefinitely.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{BaseURL: baseURL, HTTP: httpClient}
}

// URL builds the request for loc on date. loc is lowercased.
func (c *Client) URL(loc string, date time.Time) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fault.New(fault.URL, "parse base url", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fault.New(fault.URL, "parse base url", fmt.Errorf("%q is not absolute", c.BaseURL))
	}

	// loc then date, in the order the API documents; any other parameters
	// already on the base URL follow.
	rest := u.Query()
	rest.Del("loc")
	rest.Del("date")
	raw := "loc=" + url.QueryEscape(strings.ToLower(loc)) +
		"&date=" + url.QueryEscape(date.Format(queryDateLayout))
	if extra := rest.Encode(); extra != "" {
		raw += "&" + extra
	}
	u.RawQuery = raw
	return u.String(), nil
}

// Fetch issues the GET and decodes the whole body once.
func (c *Client) Fetch(ctx context.Context, loc string, date time.Time) (*Response, error) {
	reqURL, err := c.URL(loc, date)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fault.New(fault.URL, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fault.New(fault.HTTP, "get "+loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fault.New(fault.HTTP, "get "+loc, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.New(fault.HTTP, "read body", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		if fault.KindOf(err) != fault.Unknown {
			return nil, err
		}
		return nil, fault.New(fault.Decode, "decode response", err)
	}
	return &out, nil
}
