package worldbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/emissions-explorer/internal/indicators"
)

const DefaultBaseURL = "https://api.worldbank.org/v2"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	PerPage     int
	ConvertDate bool
	Backoff     BackoffConfig
	Breaker     BreakerConfig
}

// Client implements indicators.Source for the World Bank indicators API (v2).
type Client struct {
	name        string
	baseURL     string
	perPage     int
	convertDate bool
	transport   *transport
}

func NewClient(client *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 1000
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff.InitialInterval = 500 * time.Millisecond
	}
	if opts.Backoff.MaxInterval <= 0 {
		opts.Backoff.MaxInterval = 5 * time.Second
	}

	return &Client{
		name:        "worldbank",
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		perPage:     opts.PerPage,
		convertDate: opts.ConvertDate,
		transport:   newTransport(client, opts.Backoff, opts.Breaker),
	}
}

func (c *Client) Name() string {
	return c.name
}

// Fetch downloads every page of every code and returns the observations of all
// countries and aggregates. Null values are kept as missing cells.
func (c *Client) Fetch(ctx context.Context, codes []string) ([]indicators.Observation, error) {
	var out []indicators.Observation
	for _, code := range codes {
		obs, err := c.fetchIndicator(ctx, code)
		if err != nil {
			return nil, indicators.NewFetchError(c.name, fmt.Errorf("indicator %s: %w", code, err))
		}
		out = append(out, obs...)
	}
	return out, nil
}

func (c *Client) fetchIndicator(ctx context.Context, code string) ([]indicators.Observation, error) {
	var out []indicators.Observation
	for page := 1; ; page++ {
		meta, rows, err := c.fetchPage(ctx, code, page)
		if err != nil {
			return nil, err
		}

		for _, r := range rows {
			date, err := parseDate(r.Date, c.convertDate)
			if err != nil {
				log.Printf("DEBUG: skipping %s row for %s: %v", code, r.Country.Value, err)
				continue
			}
			var v indicators.Value
			if r.Value != nil {
				v = indicators.Value{Float: *r.Value, Valid: true}
			}
			out = append(out, indicators.Observation{
				Entity: r.Country.Value,
				Date:   date,
				Code:   code,
				Value:  v,
			})
		}

		if page >= int(meta.Pages) {
			break
		}
	}
	log.Printf("DEBUG: fetched %d observations for %s", len(out), code)
	return out, nil
}

type pageMeta struct {
	Page    flexInt `json:"page"`
	Pages   flexInt `json:"pages"`
	PerPage flexInt `json:"per_page"`
	Total   flexInt `json:"total"`

	// Set instead of the paging fields when the request was rejected.
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

type observationPayload struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

func (c *Client) fetchPage(ctx context.Context, code string, page int) (pageMeta, []observationPayload, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("per_page", strconv.Itoa(c.perPage))
	values.Set("page", strconv.Itoa(page))
	u := fmt.Sprintf("%s/country/all/indicator/%s?%s", c.baseURL, url.PathEscape(code), values.Encode())

	resp, err := c.transport.get(ctx, u)
	if err != nil {
		return pageMeta{}, nil, err
	}
	defer resp.Body.Close()

	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return pageMeta{}, nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	if len(payload) == 0 {
		return pageMeta{}, nil, fmt.Errorf("empty response for page %d", page)
	}

	var meta pageMeta
	if err := json.Unmarshal(payload[0], &meta); err != nil {
		return pageMeta{}, nil, fmt.Errorf("decode page %d metadata: %w", page, err)
	}
	if len(meta.Message) > 0 {
		m := meta.Message[0]
		return pageMeta{}, nil, fmt.Errorf("api error %s: %s: %s", m.ID, m.Key, m.Value)
	}

	var rows []observationPayload
	if len(payload) > 1 && !bytes.Equal(bytes.TrimSpace(payload[1]), []byte("null")) {
		if err := json.Unmarshal(payload[1], &rows); err != nil {
			return pageMeta{}, nil, fmt.Errorf("decode page %d rows: %w", page, err)
		}
	}
	return meta, rows, nil
}

// flexInt accepts both JSON numbers and numeric strings; the API has used both for paging fields.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
