package constants

import "testing"

func TestCanTransitionManually(t *testing.T) {
	cases := []struct {
		from  OperationalStatus
		to    OperationalStatus
		valid bool
	}{
		{StatusOperational, StatusMaintenance, true},
		{StatusMaintenance, StatusOperational, true},
		{StatusOperational, StatusOperational, true},
		{StatusOperational, StatusRetired, true},
		{StatusDown, StatusRetired, true},
		{StatusMaintenance, StatusRetired, true},
		{StatusOperational, StatusDown, false},
		{StatusMaintenance, StatusDown, false},
		{StatusDown, StatusOperational, false},
		{StatusDown, StatusMaintenance, false},
		{StatusRetired, StatusOperational, false},
		{StatusRetired, StatusMaintenance, false},
		{StatusRetired, StatusDown, false},
	}

	for _, tt := range cases {
		if got := CanTransitionManually(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransitionManually(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestCanOpenDowntime(t *testing.T) {
	cases := map[OperationalStatus]bool{
		StatusOperational: true,
		StatusMaintenance: true,
		StatusDown:        true,
		StatusRetired:     false,
	}
	for from, want := range cases {
		if got := CanOpenDowntime(from); got != want {
			t.Fatalf("CanOpenDowntime(%q)=%v, want %v", from, got, want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !CategoryRadiology.IsValid() || EquipmentCategory("CT").IsValid() {
		t.Fatal("unexpected category validity")
	}
	if !StatusDown.IsValid() || OperationalStatus("BROKEN").IsValid() {
		t.Fatal("unexpected status validity")
	}
	if !StatusRetired.IsFinal() || StatusDown.IsFinal() {
		t.Fatal("unexpected final status")
	}
}
