package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"github.com/kilianp07/fleetsim/core/metrics"
)

// TraceStore persists tick records as JSONL so finished runs can be
// replayed or inspected offline.
type TraceStore struct {
	path string
	mu   sync.Mutex
}

// NewTraceStore creates the trace file if it does not exist yet.
func NewTraceStore(path string) (*TraceStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &TraceStore{path: path}, nil
}

// Append writes one tick record to the end of the trace.
func (s *TraceStore) Append(rec metrics.TickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(rec)
}

// TraceQuery filters trace records. Zero-valued fields match everything;
// Episode uses -1 as the wildcard since episode numbering starts at zero.
type TraceQuery struct {
	RunID    string
	Episode  int
	FromTick int
	ToTick   int
}

// Query scans the trace and returns the matching records in file order.
// Lines that fail to decode are skipped.
func (s *TraceStore) Query(q TraceQuery) ([]metrics.TickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var res []metrics.TickRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r metrics.TickRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if q.RunID != "" && r.RunID != q.RunID {
			continue
		}
		if q.Episode >= 0 && r.Episode != q.Episode {
			continue
		}
		if r.Tick < q.FromTick {
			continue
		}
		if q.ToTick > 0 && r.Tick > q.ToTick {
			continue
		}
		res = append(res, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
