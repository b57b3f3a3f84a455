package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/fault"
)

var fixedDate = time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC)

const samplePayload = `{
	"2020-03-03 00:00:00": {
		"Ernakulam": {
			"no_of_persons_under_observation_as_on_today": 12,
			"no_of_persons_discharged_from_home_isolation": 4,
			"no_of_persons_hospitalized_today": 1,
			"other_districts": {"note": "n/a"}
		},
		"Idukki": {
			"no_of_persons_under_observation_as_on_today": null
		}
	},
	"success": true
}`

func TestURL(t *testing.T) {
	c := NewClient("http://example.test/api/location", nil)

	got, err := c.URL("Ernakulam", fixedDate)
	if err != nil {
		t.Fatal(err)
	}
	want := "http://example.test/api/location?loc=ernakulam&date=03-03-2020"
	if got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}

	t.Run("Base With Query", func(t *testing.T) {
		c := NewClient("http://example.test/api/location?format=json&loc=stale", nil)
		got, err := c.URL("Total", fixedDate)
		if err != nil {
			t.Fatal(err)
		}
		want := "http://example.test/api/location?loc=total&date=03-03-2020&format=json"
		if got != want {
			t.Errorf("URL = %s, want %s", got, want)
		}
	})

	t.Run("Relative Base", func(t *testing.T) {
		_, err := NewClient("api/location", nil).URL("kollam", fixedDate)
		if !fault.Is(err, fault.URL) {
			t.Fatalf("expected url fault, got %v", err)
		}
	})

	t.Run("Bad Base", func(t *testing.T) {
		_, err := NewClient("http://[::1", nil).URL("kollam", fixedDate)
		if !fault.Is(err, fault.URL) {
			t.Fatalf("expected url fault, got %v", err)
		}
	})
}

func TestFetch(t *testing.T) {
	var gotQuery string
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, samplePayload)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client())
	resp, err := c.Fetch(context.Background(), "ernakulam", fixedDate)
	if err != nil {
		t.Fatal(err)
	}

	if gotQuery != "loc=ernakulam&date=03-03-2020" {
		t.Errorf("query = %s", gotQuery)
	}
	if gotAuth != "" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if !resp.Success {
		t.Error("success flag not decoded")
	}

	res := resp.Lookup(fixedDate, "Ernakulam")
	if res.Outcome() != "found" {
		t.Fatalf("outcome = %s", res.Outcome())
	}
	if res.UnderObservation.Value != 12 || res.Discharged.Value != 4 {
		t.Errorf("counts = %d/%d", res.UnderObservation.Value, res.Discharged.Value)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   fault.Kind
	}{
		{"Server Error", http.StatusInternalServerError, "oops", fault.HTTP},
		{"Not JSON", http.StatusOK, "<html>", fault.Decode},
		{"Empty Body", http.StatusOK, "", fault.Decode},
		{"Bad Date Key", http.StatusOK, `{"yesterday": {}, "success": true}`, fault.Date},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := NewClient(ts.URL, ts.Client()).Fetch(context.Background(), "kollam", fixedDate)
			if !fault.Is(err, tt.kind) {
				t.Fatalf("expected %s fault, got %v", tt.kind, err)
			}
		})
	}

	t.Run("Unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		_, err := NewClient(url, nil).Fetch(context.Background(), "kollam", fixedDate)
		if !fault.Is(err, fault.HTTP) {
			t.Fatalf("expected http fault, got %v", err)
		}
	})
}

func TestLookupStates(t *testing.T) {
	var resp Response
	if err := json.Unmarshal([]byte(samplePayload), &resp); err != nil {
		t.Fatal(err)
	}

	t.Run("Date Missing", func(t *testing.T) {
		res := resp.Lookup(fixedDate.AddDate(0, 0, 1), "Ernakulam")
		if res.DateFound || res.Outcome() != "date_missing" {
			t.Errorf("outcome = %s", res.Outcome())
		}
		if res.UnderObservation != (Count{}) || res.Discharged != (Count{}) {
			t.Error("missing date should yield zero counts")
		}
	})

	t.Run("Place Missing", func(t *testing.T) {
		// Keys are matched exactly.
		res := resp.Lookup(fixedDate, "ernakulam")
		if !res.DateFound || res.PlaceFound {
			t.Fatalf("unexpected result %+v", res)
		}
		if res.UnderObservation.State != Missing || res.Discharged.Value != 0 {
			t.Errorf("unexpected counts %+v", res)
		}
	})

	t.Run("Null Fields", func(t *testing.T) {
		res := resp.Lookup(fixedDate, "Idukki")
		if res.Outcome() != "partial" {
			t.Errorf("outcome = %s", res.Outcome())
		}
		if res.UnderObservation.State != Null || res.Discharged.State != Null {
			t.Errorf("expected null states, got %+v", res)
		}
		if res.UnderObservation.Value != 0 {
			t.Error("null counter must display as 0")
		}
	})

	t.Run("Nil Response", func(t *testing.T) {
		var r *Response
		if r.Lookup(fixedDate, "Idukki").DateFound {
			t.Error("nil response found a date")
		}
	})
}

func TestDateKeyLayouts(t *testing.T) {
	for _, key := range []string{
		"2020-03-03T00:00:00Z",
		"2020-03-03 00:00:00",
		"2020-03-03 05:30:00+05:30",
		"2020-03-03",
	} {
		t.Run(key, func(t *testing.T) {
			payload := fmt.Sprintf(`{%q: {"Total": {"no_of_persons_discharged_from_home_isolation": 7}}}`, key)
			var resp Response
			if err := json.Unmarshal([]byte(payload), &resp); err != nil {
				t.Fatal(err)
			}
			if got := resp.Lookup(fixedDate, "Total").Discharged.Value; got != 7 {
				t.Errorf("discharged = %d", got)
			}
		})
	}
}

func TestResponseMarshal(t *testing.T) {
	n := 3
	resp := Response{
		Info: map[time.Time]map[string]Location{
			fixedDate: {"Kollam": {UnderObservation: &n}},
		},
		Success: true,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"2020-03-03 00:00:00"`) {
		t.Errorf("date key not rendered: %s", data)
	}

	var back Response
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Lookup(fixedDate, "Kollam").UnderObservation.Value != 3 {
		t.Error("counter lost")
	}
}
