package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/fleetsim/core/sim"
)

// WriteJSON writes the episode results to w in JSON format.
func WriteJSON(w io.Writer, results []sim.Result) error {
	enc := json.NewEncoder(w)
	return enc.Encode(results)
}

// WriteCSV writes the episode results to w as CSV with a header row.
func WriteCSV(w io.Writer, results []sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "episode", "ticks", "responded", "demands", "done", "mean_reward", "std_reward", "duration_ms"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{
			r.RunID,
			strconv.Itoa(r.Episode),
			strconv.Itoa(r.Ticks),
			strconv.Itoa(r.Responded),
			strconv.Itoa(r.Demands),
			strconv.FormatBool(r.Done),
			strconv.FormatFloat(r.MeanReward, 'f', -1, 64),
			strconv.FormatFloat(r.StdReward, 'f', -1, 64),
			strconv.FormatInt(r.Duration.Milliseconds(), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
