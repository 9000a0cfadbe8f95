package metrics

import (
	"errors"

	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
)

// MultiSink fans records out to several sinks. Every sink is called even
// when an earlier one fails; the errors are joined.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordTick(rec coremetrics.TickRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordTick(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordEpisode(rec coremetrics.EpisodeRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordEpisode(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
