package odds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"DialMeter/internal/domain/models"
	xhttp "DialMeter/pkg/http"
)

const electionBody = `[{
  "id": "e1",
  "sport_key": "politics_us_presidential_election_winner",
  "bookmakers": [{
    "key": "betfair",
    "markets": [{
      "key": "outrights",
      "outcomes": [
        {"name": "Donald Trump", "price": 2.05},
        {"name": "Kamala Harris", "price": 1.90},
        {"name": "Someone Else", "price": 150}
      ]
    }]
  }]
}]`

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/sports/politics_us_presidential_election_winner/odds/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("apiKey") != "k" || r.URL.Query().Get("regions") != "us" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTrackedOutcomes(t *testing.T) {
	srv := newServer(t, http.StatusOK, electionBody)
	c := New(xhttp.NewClient(), Config{
		BaseURL: srv.URL,
		APIKey:  "k",
		Tracked: []string{"Kamala Harris", "Donald Trump"},
	})

	r, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Kind != models.KindOdds || len(r.Odds) != 2 {
		t.Fatalf("unexpected reading %+v", r)
	}
	if r.Odds["Donald Trump"] != 2.05 || r.Odds["Kamala Harris"] != 1.90 {
		t.Fatalf("unexpected odds %v", r.Odds)
	}
}

func TestFetchAllOutcomesWhenUntracked(t *testing.T) {
	srv := newServer(t, http.StatusOK, electionBody)
	c := New(xhttp.NewClient(), Config{BaseURL: srv.URL, APIKey: "k"})
	r, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Odds) != 3 {
		t.Fatalf("expected 3 outcomes, got %v", r.Odds)
	}
}

func TestFetchMissingFields(t *testing.T) {
	cases := map[string]string{
		"[0]":                                   `[]`,
		"[0].bookmakers[0]":                     `[{"bookmakers": []}]`,
		"[0].bookmakers[0].markets[0]":          `[{"bookmakers": [{"markets": []}]}]`,
		"[0].bookmakers[0].markets[0].outcomes": `[{"bookmakers": [{"markets": [{"outcomes": [{"name": "x", "price": 3}]}]}]}]`,
	}
	for field, body := range cases {
		srv := newServer(t, http.StatusOK, body)
		c := New(xhttp.NewClient(), Config{BaseURL: srv.URL, APIKey: "k", Tracked: []string{"Donald Trump"}})
		_, err := c.Fetch(context.Background())
		var missErr *models.MissingFieldError
		if !errors.As(err, &missErr) {
			t.Fatalf("%s: expected MissingFieldError, got %v", field, err)
		}
		if missErr.Field != field {
			t.Fatalf("expected field %q, got %q", field, missErr.Field)
		}
	}
}

func TestFetchIgnoresPricelessUntrackedOutcome(t *testing.T) {
	body := `[{"bookmakers": [{"markets": [{"outcomes": [
		{"name": "Someone Else"},
		{"name": "Donald Trump", "price": 2.05},
		{"name": "Kamala Harris", "price": 1.90}
	]}]}]}]`
	srv := newServer(t, http.StatusOK, body)
	c := New(xhttp.NewClient(), Config{
		BaseURL: srv.URL,
		APIKey:  "k",
		Tracked: []string{"Kamala Harris", "Donald Trump"},
	})
	r, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Odds) != 2 || r.Odds["Donald Trump"] != 2.05 {
		t.Fatalf("unexpected odds %v", r.Odds)
	}
}

func TestFetchTrackedOutcomeWithoutPrice(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[{"bookmakers": [{"markets": [{"outcomes": [{"name": "Donald Trump"}]}]}]}]`)
	c := New(xhttp.NewClient(), Config{BaseURL: srv.URL, APIKey: "k", Tracked: []string{"Donald Trump"}})
	_, err := c.Fetch(context.Background())
	var missErr *models.MissingFieldError
	if !errors.As(err, &missErr) || missErr.Field != "[0].bookmakers[0].markets[0].outcomes[0].price" {
		t.Fatalf("expected missing price, got %v", err)
	}
}

func TestFetchHTTPFailure(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, `{"message":"bad key"}`)
	c := New(xhttp.NewClient(), Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Fetch(context.Background())
	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	var statusErr *xhttp.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected wrapped 401, got %v", err)
	}
	if models.Classify(err) != models.KindFetch {
		t.Fatalf("unexpected kind %s", models.Classify(err))
	}
}

func TestFetchBadJSON(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{not json`)
	c := New(xhttp.NewClient(), Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Fetch(context.Background())
	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}
