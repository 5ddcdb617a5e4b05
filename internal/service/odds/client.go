package odds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"DialMeter/internal/domain/models"
	xhttp "DialMeter/pkg/http"
)

const (
	Name           = "odds"
	DefaultBaseURL = "https://api.the-odds-api.com"
	DefaultSport   = "politics_us_presidential_election_winner"
	DefaultRegions = "us"
)

type outcome struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

type market struct {
	Key      string     `json:"key"`
	Outcomes []*outcome `json:"outcomes"`
}

type bookmaker struct {
	Key     string    `json:"key"`
	Title   string    `json:"title"`
	Markets []*market `json:"markets"`
}

type event struct {
	ID         string       `json:"id"`
	SportKey   string       `json:"sport_key"`
	Bookmakers []*bookmaker `json:"bookmakers"`
}

// Config selects the market and which outcomes to follow.
type Config struct {
	BaseURL string
	APIKey  string
	Sport   string
	Regions string
	// Tracked limits the outcomes read from the market. Empty means all.
	Tracked []string
}

// Client reads decimal odds from the first bookmaker's first market of the first event.
type Client struct {
	http    *xhttp.Client
	cfg     Config
	tracked map[string]struct{}
	now     func() time.Time
}

func New(hc *xhttp.Client, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Sport == "" {
		cfg.Sport = DefaultSport
	}
	if cfg.Regions == "" {
		cfg.Regions = DefaultRegions
	}
	tracked := make(map[string]struct{}, len(cfg.Tracked))
	for _, n := range cfg.Tracked {
		tracked[n] = struct{}{}
	}
	return &Client{http: hc, cfg: cfg, tracked: tracked, now: time.Now}
}

func (c *Client) Name() string { return Name }

// endpoint is the request URL without the query string, safe to log.
func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v4/sports/%s/odds/", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Sport))
}

// Fetch returns an odds reading for the tracked outcomes.
func (c *Client) Fetch(ctx context.Context) (*models.Reading, error) {
	endpoint := c.endpoint()
	var events []*event
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    endpoint,
		QueryParams: map[string][]string{
			"apiKey":     {c.cfg.APIKey},
			"regions":    {c.cfg.Regions},
			"oddsFormat": {"decimal"},
		},
	}, &events)
	if err != nil {
		return nil, &models.FetchError{Source: Name, URL: endpoint, Err: err}
	}

	if len(events) == 0 || events[0] == nil {
		return nil, &models.MissingFieldError{Source: Name, Field: "[0]"}
	}
	if len(events[0].Bookmakers) == 0 || events[0].Bookmakers[0] == nil {
		return nil, &models.MissingFieldError{Source: Name, Field: "[0].bookmakers[0]"}
	}
	bm := events[0].Bookmakers[0]
	if len(bm.Markets) == 0 || bm.Markets[0] == nil {
		return nil, &models.MissingFieldError{Source: Name, Field: "[0].bookmakers[0].markets[0]"}
	}

	odds := make(map[string]float64)
	for i, o := range bm.Markets[0].Outcomes {
		if o == nil {
			return nil, &models.MissingFieldError{Source: Name, Field: fmt.Sprintf("[0].bookmakers[0].markets[0].outcomes[%d]", i)}
		}
		if len(c.tracked) > 0 {
			if _, ok := c.tracked[o.Name]; !ok {
				continue
			}
		}
		if o.Price == nil {
			return nil, &models.MissingFieldError{Source: Name, Field: fmt.Sprintf("[0].bookmakers[0].markets[0].outcomes[%d].price", i)}
		}
		odds[o.Name] = *o.Price
	}
	if len(odds) == 0 {
		return nil, &models.MissingFieldError{Source: Name, Field: "[0].bookmakers[0].markets[0].outcomes"}
	}

	return &models.Reading{
		Source:    Name,
		Kind:      models.KindOdds,
		Odds:      odds,
		FetchedAt: c.now(),
	}, nil
}
