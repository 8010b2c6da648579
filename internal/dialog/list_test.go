package dialog

import (
	"errors"
	"slices"
	"testing"
)

func mkList(t *testing.T, items ...Dialog) *List {
	t.Helper()
	l, err := NewList(FolderKey(FolderPrimary), items)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func pinned(id int64, order int) Dialog { return Dialog{ID: id, PinnedOrder: order} }

func TestNewListRejectsDuplicates(t *testing.T) {
	_, err := NewList(FolderKey(0), []Dialog{{ID: 1}, {ID: 2}, {ID: 1}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestInsertRemoveChange(t *testing.T) {
	l := mkList(t, Dialog{ID: 1}, Dialog{ID: 2}, Dialog{ID: 3})

	if err := l.InsertAt(1, Dialog{ID: 9}); err != nil {
		t.Fatal(err)
	}
	if got, want := l.IDs(), []int64{1, 9, 2, 3}; !slices.Equal(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if err := l.InsertAt(0, Dialog{ID: 2}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate insert err = %v", err)
	}
	if err := l.InsertAt(9, Dialog{ID: 10}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out of range insert err = %v", err)
	}

	d, err := l.RemoveAt(2)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != 2 {
		t.Errorf("removed %d, want 2", d.ID)
	}

	if err := l.ChangeAt(0, Dialog{ID: 1, Muted: true}); err != nil {
		t.Fatal(err)
	}
	if got, _ := l.At(0); !got.Muted {
		t.Error("change not applied")
	}
	if err := l.ChangeAt(0, Dialog{ID: 3}); !errors.Is(err, ErrIDMismatch) {
		t.Errorf("mismatched change err = %v", err)
	}
}

func TestPinnedPrefixSkipsPromotedRow(t *testing.T) {
	l := mkList(t,
		Dialog{ID: 100, Variant: Promoted, PinnedOrder: 1},
		pinned(1, 1), pinned(2, 2),
		Dialog{ID: 3},
		pinned(4, 3), // not contiguous, outside prefix
	)
	start, end := l.PinnedPrefix()
	if start != 1 || end != 3 {
		t.Errorf("prefix = [%d,%d), want [1,3)", start, end)
	}
	if got := l.PinnedIDs(); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("pinned ids = %v", got)
	}
}

func TestMoveWithinPinnedPrefix(t *testing.T) {
	l := mkList(t, pinned(1, 1), pinned(2, 2), pinned(3, 3), Dialog{ID: 4})

	if err := l.MoveWithinPinnedPrefix(0, 2); err != nil {
		t.Fatal(err)
	}
	l.RenumberPinned()
	if got := l.IDs(); !slices.Equal(got, []int64{2, 3, 1, 4}) {
		t.Errorf("ids = %v", got)
	}
	for i := 0; i < 3; i++ {
		if d, _ := l.At(i); d.PinnedOrder != i+1 {
			t.Errorf("row %d pinned order = %d, want %d", i, d.PinnedOrder, i+1)
		}
	}
	if d, _ := l.At(3); d.Pinned() {
		t.Error("unpinned row gained a pinned order")
	}

	if err := l.MoveWithinPinnedPrefix(0, 3); !errors.Is(err, ErrOutsidePinnedPrefix) {
		t.Errorf("err = %v, want ErrOutsidePinnedPrefix", err)
	}
}

func TestReorderPinned(t *testing.T) {
	l := mkList(t, pinned(1, 1), pinned(2, 2), pinned(3, 3), Dialog{ID: 4})

	if !l.ReorderPinned([]int64{3, 1, 2}) {
		t.Fatal("ReorderPinned() = false")
	}
	if got := l.IDs(); !slices.Equal(got, []int64{3, 1, 2, 4}) {
		t.Errorf("ids = %v", got)
	}
	if l.ReorderPinned([]int64{3, 1}) {
		t.Error("ReorderPinned() accepted a partial order")
	}
	if l.ReorderPinned([]int64{3, 1, 4}) {
		t.Error("ReorderPinned() accepted a foreign id")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		id   int64
		want PeerKind
	}{
		{0, PeerUnknown},
		{42, PeerUser},
		{-1001234, PeerGroup},
		{EncryptedDialogID(7), PeerEncrypted},
		{FolderDialogID(FolderArchive), PeerFolder},
	}
	for _, tt := range tests {
		if got := KindOf(tt.id); got != tt.want {
			t.Errorf("KindOf(%d) = %d, want %d", tt.id, got, tt.want)
		}
	}
}
