package carbon

import (
	"context"
	"strconv"
	"strings"
	"time"

	"DialMeter/internal/domain/models"
	xhttp "DialMeter/pkg/http"
	"DialMeter/pkg/util"
)

const (
	Name       = "carbon"
	DefaultURL = "https://api.carbonintensity.org.uk/generation"
)

// DefaultGreenFuels are summed into the green share.
var DefaultGreenFuels = []string{"solar", "nuclear", "wind", "hydro"}

type generationResponse struct {
	Data *struct {
		From          string              `json:"from"`
		To            string              `json:"to"`
		GenerationMix []*models.FuelShare `json:"generationmix"`
	} `json:"data"`
}

// Client reads the current UK generation mix and reports the green share.
type Client struct {
	http  *xhttp.Client
	url   string
	green map[string]struct{}
	now   func() time.Time
}

// New creates a generation-mix source. Empty url or fuels fall back to defaults.
func New(hc *xhttp.Client, url string, greenFuels []string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if len(greenFuels) == 0 {
		greenFuels = DefaultGreenFuels
	}
	green := make(map[string]struct{}, len(greenFuels))
	for _, f := range greenFuels {
		green[strings.ToLower(strings.TrimSpace(f))] = struct{}{}
	}
	return &Client{http: hc, url: url, green: green, now: time.Now}
}

func (c *Client) Name() string { return Name }

// Fetch returns a percentage reading: the sum of perc over green fuels.
func (c *Client) Fetch(ctx context.Context) (*models.Reading, error) {
	var resp generationResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.url,
	}, &resp)
	if err != nil {
		return nil, &models.FetchError{Source: Name, URL: c.url, Err: err}
	}
	if resp.Data == nil {
		return nil, &models.MissingFieldError{Source: Name, Field: "data"}
	}
	if resp.Data.GenerationMix == nil {
		return nil, &models.MissingFieldError{Source: Name, Field: "data.generationmix"}
	}

	var total float64
	for i, row := range resp.Data.GenerationMix {
		prefix := "data.generationmix[" + strconv.Itoa(i) + "]"
		if row == nil || row.Fuel == "" {
			return nil, &models.MissingFieldError{Source: Name, Field: prefix + ".fuel"}
		}
		if row.Perc == nil {
			return nil, &models.MissingFieldError{Source: Name, Field: prefix + ".perc"}
		}
		if _, ok := c.green[strings.ToLower(row.Fuel)]; ok {
			total += *row.Perc
		}
	}

	return &models.Reading{
		Source:     Name,
		Kind:       models.KindPercentage,
		Percentage: total,
		WindowFrom: util.ParseTimeDefault(resp.Data.From, time.Time{}),
		WindowTo:   util.ParseTimeDefault(resp.Data.To, time.Time{}),
		FetchedAt:  c.now(),
	}, nil
}
