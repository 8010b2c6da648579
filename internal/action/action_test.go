package action

import (
	"testing"

	"github.com/matheus3301/dialogs/internal/dialog"
)

func TestParseKind(t *testing.T) {
	for k, name := range kindNames {
		got, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", name, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", name, got, k)
		}
	}
	if got, err := ParseKind(" Archive "); err != nil || got != Archive {
		t.Errorf("ParseKind(\" Archive \") = %v, %v", got, err)
	}
	if _, err := ParseKind("explode"); err == nil {
		t.Error("ParseKind(explode) should fail")
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		kind     Kind
		removes  bool
		undoable bool
	}{
		{Archive, true, true},
		{Delete, true, true},
		{Block, true, true},
		{Clear, false, true},
		{Pin, false, false},
		{Read, false, false},
		{Mute, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.RemovesRow(); got != tt.removes {
			t.Errorf("%v.RemovesRow() = %v", tt.kind, got)
		}
		if got := tt.kind.Undoable(); got != tt.undoable {
			t.Errorf("%v.Undoable() = %v", tt.kind, got)
		}
	}
}

func TestNewCopiesTargets(t *testing.T) {
	ids := []int64{1, 2}
	p := New(Delete, dialog.FilterKey(3), ids...)
	ids[0] = 99

	if !p.Touches(1) || p.Touches(99) {
		t.Errorf("targets = %v", p.Targets)
	}
	if p.FilterID != 3 {
		t.Errorf("filter id = %d, want 3", p.FilterID)
	}
	if p.ID == "" {
		t.Error("missing action id")
	}
}
