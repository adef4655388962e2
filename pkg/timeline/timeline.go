// Package timeline reduces a message sequence to temporal summary
// statistics. Day buckets are keyed by UTC calendar date; the timezone is
// fixed here, never inferred per message.
package timeline

import (
	"encoding/json"
	"time"
)

// bucketLayout keys the per-day frequency map.
const bucketLayout = "2006-01-02"

// Duration marshals in the time.Duration String form ("52h10m30s") rather
// than raw nanoseconds, keeping report JSON readable.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Summary holds the temporal shape of a contact's message history.
type Summary struct {
	FirstMessage  time.Time      `json:"first_message"`
	LastMessage   time.Time      `json:"last_message"`
	TotalDuration Duration       `json:"total_duration"`
	Frequency     map[string]int `json:"message_frequency"`
}

// Summarize reduces timestamps to a Summary. Input order is irrelevant.
// An empty sequence returns nil, which serializes as JSON null; callers
// must nil-check before rendering durations.
func Summarize(times []time.Time) *Summary {
	if len(times) == 0 {
		return nil
	}

	first, last := times[0], times[0]
	freq := make(map[string]int, 8)
	for _, ts := range times {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
		freq[ts.UTC().Format(bucketLayout)]++
	}

	return &Summary{
		FirstMessage:  first,
		LastMessage:   last,
		TotalDuration: Duration(last.Sub(first)),
		Frequency:     freq,
	}
}
