package domain

import (
	"math/rand"
	"testing"
)

func TestTutorialCursorStaysInBounds(t *testing.T) {
	const steps = 5
	rng := rand.New(rand.NewSource(42))

	var c TutorialCursor
	c.Reopen()
	for i := 0; i < 1000; i++ {
		if rng.Intn(2) == 0 {
			c.Next(steps)
		} else {
			c.Back()
		}
		if c.Index < 0 || c.Index > steps-1 {
			t.Fatalf("cursor left bounds: %d", c.Index)
		}
	}
}

func TestTutorialCursorClamps(t *testing.T) {
	const steps = 5
	var c TutorialCursor
	c.Reopen()

	c.Back()
	if c.Index != 0 {
		t.Fatalf("Back at start moved to %d", c.Index)
	}
	if c.CanGoBack() {
		t.Error("back should be disabled at the first step")
	}

	for i := 0; i < 10; i++ {
		c.Next(steps)
	}
	if c.Index != steps-1 {
		t.Fatalf("Next clamped at %d, expected %d", c.Index, steps-1)
	}
	if c.Affordance(steps) != TutorialAffordanceFinish {
		t.Errorf("expected finish affordance on last step")
	}
}

func TestTutorialCursorFinishAndReopen(t *testing.T) {
	const steps = 5
	var c TutorialCursor
	c.Reopen()
	c.Next(steps)

	if c.Finish(steps) {
		t.Fatal("finish must be refused before the last step")
	}
	if c.Affordance(steps) != TutorialAffordanceNext {
		t.Error("expected next affordance before the last step")
	}

	for i := 0; i < steps; i++ {
		c.Next(steps)
	}
	if !c.Finish(steps) || c.Open {
		t.Fatal("expected finish to close the overlay on the last step")
	}

	c.Reopen()
	if !c.Open || c.Index != 0 {
		t.Errorf("reopen should reset to step 0, got %+v", c)
	}
}
