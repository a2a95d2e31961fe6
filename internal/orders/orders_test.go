package orders

import "testing"

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"os 1042", "OS-1042"},
		{"OS-1042", "OS-1042"},
		{"os1042", "OS-1042"},
		{"  os - 1042 ", "OS-1042"},
		{"1042", "OS-1042"},
		{"", ""},
		{"os", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.in); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(StatusInRepair) {
		t.Error("em_reparo must be a valid status")
	}
	if ValidStatus("perdido") {
		t.Error("unknown status must be rejected")
	}
}

func TestStatusLabel_CoversLifecycle(t *testing.T) {
	for status := range validStatuses {
		if StatusLabel[status] == "" {
			t.Errorf("status %q has no customer-facing label", status)
		}
	}
}
