package metrics

import "time"

// TickRecord captures one simulation tick for observability purposes.
type TickRecord struct {
	RunID     string    `json:"run_id"`
	Episode   int       `json:"episode"`
	Tick      int       `json:"tick"`
	Batteries []float64 `json:"batteries"`
	Locations []int     `json:"locations"`
	Delivered []int     `json:"delivered,omitempty"`
	Responded int       `json:"responded"`
	// MeanReward is the mean cumulative per-vehicle reward after this tick.
	MeanReward float64   `json:"mean_reward"`
	Time       time.Time `json:"time"`
}

// EpisodeRecord summarises one finished episode.
type EpisodeRecord struct {
	RunID      string        `json:"run_id"`
	Episode    int           `json:"episode"`
	Ticks      int           `json:"ticks"`
	Responded  int           `json:"responded"`
	Demands    int           `json:"demands"`
	Done       bool          `json:"done"`
	MeanReward float64       `json:"mean_reward"`
	StdReward  float64       `json:"std_reward"`
	Duration   time.Duration `json:"duration"`
	Time       time.Time     `json:"time"`
}

// Sink records simulation progress. Implementations must tolerate being
// called from the episode loop on every tick.
type Sink interface {
	RecordTick(rec TickRecord) error
	RecordEpisode(rec EpisodeRecord) error
}

// NopSink ignores all records.
type NopSink struct{}

func (NopSink) RecordTick(TickRecord) error       { return nil }
func (NopSink) RecordEpisode(EpisodeRecord) error { return nil }

// Config selects which metric backends are active.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
