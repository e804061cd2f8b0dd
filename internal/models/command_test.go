package models

import "testing"

func TestValidCommandStatus(t *testing.T) {
	for _, valid := range []string{
		CommandStatusPending, CommandStatusPickedUp, CommandStatusCompleted, CommandStatusFailed,
	} {
		if !ValidCommandStatus(valid) {
			t.Errorf("ValidCommandStatus(%q) = false, want true", valid)
		}
	}

	for _, invalid := range []string{"", "done", "PENDING", "archived"} {
		if ValidCommandStatus(invalid) {
			t.Errorf("ValidCommandStatus(%q) = true, want false", invalid)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{CommandStatusPending, CommandStatusPickedUp}:   true,
		{CommandStatusPending, CommandStatusCompleted}:  true,
		{CommandStatusPending, CommandStatusFailed}:     true,
		{CommandStatusPickedUp, CommandStatusCompleted}: true,
		{CommandStatusPickedUp, CommandStatusFailed}:    true,
	}

	statuses := []string{CommandStatusPending, CommandStatusPickedUp, CommandStatusCompleted, CommandStatusFailed}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}

	if CanTransition("", CommandStatusPending) {
		t.Error("transition from empty status must be rejected")
	}
}
