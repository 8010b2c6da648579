package reconcile

import (
	"fmt"

	"github.com/matheus3301/dialogs/internal/dialog"
)

// Renderer is the list view. It animates single-row changes and reports
// back through the controller's OnAnimationFinished and OnGloballyIdle.
type Renderer interface {
	InsertAt(key dialog.Key, index int, d dialog.Dialog)
	RemoveAt(key dialog.Key, index int)
	ChangeAt(key dialog.Key, index int, d dialog.Dialog)
	ReloadAll(key dialog.Key)
}

// Op is the operation of a render instruction.
type Op uint8

const (
	OpNone Op = iota
	OpInsert
	OpRemove
	OpChange
	OpReload
	// OpDeferred means nothing was rendered now; the list reloads fully
	// when its freeze ends.
	OpDeferred
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpChange:
		return "change"
	case OpReload:
		return "reload"
	case OpDeferred:
		return "deferred"
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Instruction tells a renderer what to draw.
type Instruction struct {
	Op     Op
	List   dialog.Key
	Index  int
	Dialog dialog.Dialog
}

// Apply forwards the instruction to r. Deferred and empty instructions are dropped.
func (ins Instruction) Apply(r Renderer) {
	if r == nil {
		return
	}
	switch ins.Op {
	case OpInsert:
		r.InsertAt(ins.List, ins.Index, ins.Dialog)
	case OpRemove:
		r.RemoveAt(ins.List, ins.Index)
	case OpChange:
		r.ChangeAt(ins.List, ins.Index, ins.Dialog)
	case OpReload:
		r.ReloadAll(ins.List)
	}
}

func opFor(kind MutationKind) Op {
	switch kind {
	case Insert:
		return OpInsert
	case Remove:
		return OpRemove
	default:
		return OpChange
	}
}
