package session

// Summary is a read-only view of the session for rendering.
type Summary struct {
	Exercises      []Exercise `json:"exercises"`
	TotalVolume    float64    `json:"total_volume"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Duration       string     `json:"duration"`
	Running        bool       `json:"timer_running"`
}

// Summarize snapshots s together with the timer state. t may be nil.
func Summarize(s *Session, t *Timer) Summary {
	sum := Summary{
		Exercises:   s.Snapshot(),
		TotalVolume: s.TotalVolume(),
	}
	if t != nil {
		sum.ElapsedSeconds = t.Elapsed()
		sum.Running = t.Running()
	}
	sum.Duration = FormatElapsed(sum.ElapsedSeconds)
	return sum
}
