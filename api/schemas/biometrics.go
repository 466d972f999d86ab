package schemas

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Mid returns the centre of the interval.
func (r Range) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// BiometricProfile holds the behavioral parameters of one identity.
type BiometricProfile struct {
	TypingWPM      Range   `json:"typingWpm"`
	MouseSpeed     Range   `json:"mouseSpeed"`
	MouseAccuracy  float64 `json:"mouseAccuracy"`
	ErrorRate      float64 `json:"errorRate"`
	ReactionTimeMs Range   `json:"reactionTimeMs"`
}
