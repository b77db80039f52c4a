package usecase

import (
	"fmt"

	"github.com/riskibarqy/rinkstats/internal/domain/stats"
)

// warningList collects non-fatal conditions during a run. It also tracks
// how many events were seen and how many were skipped so the orchestrator
// can escalate when the malformed fraction crosses the configured
// threshold.
type warningList struct {
	items         []stats.Warning
	eventsSeen    int
	eventsSkipped int
}

func (w *warningList) add(kind, format string, args ...any) {
	w.items = append(w.items, stats.Warning{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (w *warningList) skip(kind, format string, args ...any) {
	w.eventsSkipped++
	w.add(kind, format, args...)
}

func (w *warningList) seen(n int) {
	w.eventsSeen += n
}

// malformedFraction is skipped events over all events seen; zero when no
// events were read at all.
func (w *warningList) malformedFraction() float64 {
	if w.eventsSeen == 0 {
		return 0
	}
	return float64(w.eventsSkipped) / float64(w.eventsSeen)
}
