package task

// Statistics holds per-status task counts.
type Statistics struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// Aggregate counts tasks per status. Unknown statuses fold into Todo so the
// three buckets always sum to len(tasks).
func Aggregate(tasks []Task) Statistics {
	var s Statistics
	for _, t := range tasks {
		switch NormalizeStatus(string(t.Status)) {
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		default:
			s.Todo++
		}
	}
	return s
}

// Total returns the number of tasks summarized.
func (s Statistics) Total() int {
	return s.Todo + s.InProgress + s.Completed
}

// Count returns the count for a single status.
func (s Statistics) Count(st Status) int {
	switch st {
	case StatusInProgress:
		return s.InProgress
	case StatusCompleted:
		return s.Completed
	default:
		return s.Todo
	}
}
