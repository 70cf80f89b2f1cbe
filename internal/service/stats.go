package service

// EventStats counts how events of one type were handled.
type EventStats struct {
	Applied int
	Ignored int
	// Reasons counts ignored events by why they were ignored.
	Reasons map[string]int
}

// Stats is keyed by event type token.
type Stats map[string]*EventStats

func (s Stats) record(eventType, reason string) {
	es, ok := s[eventType]
	if !ok {
		es = &EventStats{Reasons: make(map[string]int)}
		s[eventType] = es
	}

	if reason == reasonApplied {
		es.Applied++
		return
	}
	es.Ignored++
	es.Reasons[reason]++
}

func (s Stats) clone() Stats {
	out := make(Stats, len(s))
	for k, es := range s {
		cp := &EventStats{Applied: es.Applied, Ignored: es.Ignored, Reasons: make(map[string]int, len(es.Reasons))}
		for r, n := range es.Reasons {
			cp.Reasons[r] = n
		}
		out[k] = cp
	}
	return out
}

// Total returns the number of events seen across all types.
func (s Stats) Total() int {
	var n int
	for _, es := range s {
		n += es.Applied + es.Ignored
	}
	return n
}
