package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/fault"
)

// Location is one place's counters for one day. The upstream source omits
// fields freely, so every counter is optional.
type Location struct {
	Discharged       *int              `json:"no_of_persons_discharged_from_home_isolation"`
	Hospitalized     *int              `json:"no_of_persons_hospitalized_today"`
	HomeIsolation    *int              `json:"no_of_persons_under_home_isolation_as_on_today"`
	UnderObservation *int              `json:"no_of_persons_under_observation_as_on_today"`
	PositiveCases    *int              `json:"no_of_positive_cases_admitted"`
	Symptomatic      *int              `json:"no_of_symptomatic_persons_hospitalized_as_on_today"`
	OtherDistricts   map[string]string `json:"other_districts,omitempty"`
}

// Response is the whole payload: date-time keys at the top level next to a
// success flag.
type Response struct {
	Info    map[time.Time]map[string]Location
	Success bool
}

var keyLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseKey(key string) (time.Time, error) {
	var lastErr error
	for _, layout := range keyLayouts {
		t, err := time.ParseInLocation(layout, key, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Info = make(map[time.Time]map[string]Location, len(raw))
	for key, val := range raw {
		if key == "success" {
			if err := json.Unmarshal(val, &r.Success); err != nil {
				return fmt.Errorf("success flag: %w", err)
			}
			continue
		}

		date, err := parseKey(key)
		if err != nil {
			return fault.New(fault.Date, fmt.Sprintf("parse key %q", key), err)
		}

		var locs map[string]Location
		if err := json.Unmarshal(val, &locs); err != nil {
			return fmt.Errorf("entry %s: %w", key, err)
		}
		r.Info[date] = locs
	}
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Info)+1)
	for date, locs := range r.Info {
		out[date.Format("2006-01-02 15:04:05")] = locs
	}
	out["success"] = r.Success
	return json.Marshal(out)
}

type State int

const (
	// Missing means the date or the place key was not in the payload.
	Missing State = iota
	// Null means the place was found but the counter was null or absent.
	Null
	Present
)

func (s State) String() string {
	switch s {
	case Present:
		return "present"
	case Null:
		return "null"
	default:
		return "missing"
	}
}

// Count is a counter with the reason behind its value. Value is 0 unless
// State is Present.
type Count struct {
	Value int
	State State
}

func count(p *int) Count {
	if p == nil {
		return Count{State: Null}
	}
	return Count{Value: *p, State: Present}
}

type Result struct {
	Date             time.Time
	Place            string
	DateFound        bool
	PlaceFound       bool
	UnderObservation Count
	Discharged       Count
}

// Lookup finds place (matched exactly, no case folding) under date.
func (r *Response) Lookup(date time.Time, place string) Result {
	res := Result{Date: date, Place: place}
	if r == nil {
		return res
	}

	locs, ok := r.Info[date.UTC()]
	if !ok {
		return res
	}
	res.DateFound = true

	loc, ok := locs[place]
	if !ok {
		return res
	}
	res.PlaceFound = true
	res.UnderObservation = count(loc.UnderObservation)
	res.Discharged = count(loc.Discharged)
	return res
}

// Outcome summarises the lookup for logging.
func (r Result) Outcome() string {
	switch {
	case !r.DateFound:
		return "date_missing"
	case !r.PlaceFound:
		return "place_missing"
	case r.UnderObservation.State == Null || r.Discharged.State == Null:
		return "partial"
	default:
		return "found"
	}
}
