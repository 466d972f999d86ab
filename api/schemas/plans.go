package schemas

// -- Behavior Plan Schemas --

// PathPoint is one pointer position. DelayMs is the wait before moving to it.
type PathPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	DelayMs float64 `json:"delayMs"`
}

// MotionPath is an ordered pointer trajectory.
type MotionPath struct {
	Points []PathPoint `json:"points"`
}

// Last returns the final point of the path and false if the path is empty.
func (p MotionPath) Last() (PathPoint, bool) {
	if len(p.Points) == 0 {
		return PathPoint{}, false
	}
	return p.Points[len(p.Points)-1], true
}

// TotalDelayMs sums the delays of every point.
func (p MotionPath) TotalDelayMs() float64 {
	var total float64
	for _, pt := range p.Points {
		total += pt.DelayMs
	}
	return total
}

// TypingActionKind is the kind of a typing action.
type TypingActionKind string

const (
	ActionTypeKey   TypingActionKind = "type"
	ActionBackspace TypingActionKind = "backspace"
	ActionPause     TypingActionKind = "pause"
)

// TypingAction is one keystroke or pause. DelayMs is the wait before it.
type TypingAction struct {
	Action  TypingActionKind `json:"action"`
	Char    string           `json:"char,omitempty"`
	DelayMs float64          `json:"delayMs"`
}

// TypingPlan is an ordered sequence of typing actions.
type TypingPlan struct {
	Actions []TypingAction `json:"actions"`
}

// Count returns how many actions of the given kind the plan holds.
func (p TypingPlan) Count(kind TypingActionKind) int {
	n := 0
	for _, a := range p.Actions {
		if a.Action == kind {
			n++
		}
	}
	return n
}

// ScrollPattern selects the rhythm of a scroll plan.
type ScrollPattern string

const (
	ScrollSmooth ScrollPattern = "smooth"
	ScrollJumpy  ScrollPattern = "jumpy"
	ScrollMixed  ScrollPattern = "mixed"
)

// ScrollPatterns lists every pattern in a stable order.
var ScrollPatterns = []ScrollPattern{ScrollSmooth, ScrollJumpy, ScrollMixed}

// ScrollStep is one wheel movement. Regression marks a backward re-read.
type ScrollStep struct {
	DeltaY     float64 `json:"deltaY"`
	DelayMs    float64 `json:"delayMs"`
	Regression bool    `json:"regression,omitempty"`
}

// ScrollPlan is an ordered sequence of scroll steps.
type ScrollPlan struct {
	Pattern ScrollPattern `json:"pattern"`
	Steps   []ScrollStep  `json:"steps"`
}

// NetDelta is the signed sum of every step.
func (p ScrollPlan) NetDelta() float64 {
	var total float64
	for _, s := range p.Steps {
		total += s.DeltaY
	}
	return total
}

// ForwardDelta sums the steps that are not regressions.
func (p ScrollPlan) ForwardDelta() float64 {
	var total float64
	for _, s := range p.Steps {
		if !s.Regression {
			total += s.DeltaY
		}
	}
	return total
}
