package analyze

import "time"

// snapshotTrends records daily and weekly aggregates after a completed job.
// Empty windows are skipped; snapshot failures are logged, never job-fatal.
func (w *Worker) snapshotTrends(now time.Time) {
	windows := []struct {
		period string
		span   time.Duration
	}{
		{"daily", 24 * time.Hour},
		{"weekly", 7 * 24 * time.Hour},
	}

	for _, win := range windows {
		snap, err := w.store.TrendAggregates(now.Add(-win.span))
		if err != nil {
			w.logf("trend aggregation (%s): %v", win.period, err)
			continue
		}
		if snap.SampleCount == 0 {
			continue
		}

		snap.Period = win.period
		snap.CreatedAt = now
		if err := w.store.InsertTrendSnapshot(snap); err != nil {
			w.logf("trend snapshot (%s): %v", win.period, err)
		}
	}
}
