package domain

// TutorialStep is one static panel of the guided tutorial.
type TutorialStep struct {
	Key         string `json:"key" mapstructure:"key"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
}

// TutorialAffordance names the forward control shown on the current step.
type TutorialAffordance string

const (
	TutorialAffordanceNext   TutorialAffordance = "next"
	TutorialAffordanceFinish TutorialAffordance = "finish"
)

// TutorialCursor tracks the tutorial overlay and its position.
// Index stays within [0, stepCount-1] for every operation.
type TutorialCursor struct {
	Open  bool `json:"open"`
	Index int  `json:"index"`
}

// Reopen shows the overlay at the first step.
func (c *TutorialCursor) Reopen() {
	c.Open = true
	c.Index = 0
}

// Next advances by one, stopping at the last step.
func (c *TutorialCursor) Next(stepCount int) {
	if stepCount <= 0 {
		c.Index = 0
		return
	}
	c.Index = min(c.Index+1, stepCount-1)
}

// Back retreats by one, stopping at the first step.
func (c *TutorialCursor) Back() {
	c.Index = max(c.Index-1, 0)
}

// Finish closes the overlay. It is only honoured on the last step.
func (c *TutorialCursor) Finish(stepCount int) bool {
	if c.Index < stepCount-1 {
		return false
	}
	c.Open = false
	return true
}

// Affordance returns "finish" on the last step and "next" elsewhere.
func (c TutorialCursor) Affordance(stepCount int) TutorialAffordance {
	if c.Index >= stepCount-1 {
		return TutorialAffordanceFinish
	}
	return TutorialAffordanceNext
}

// CanGoBack reports whether the back control is enabled.
func (c TutorialCursor) CanGoBack() bool {
	return c.Index > 0
}
