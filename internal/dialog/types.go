package dialog

import "fmt"

// Variant distinguishes regular conversations from synthetic rows the list
// renders alongside them.
type Variant uint8

const (
	// Regular is an ordinary user, group, channel or secret chat.
	Regular Variant = iota
	// Promoted is a sponsored row shown ahead of everything else. It is
	// never reorderable, never archivable and never counts against pin limits.
	Promoted
	// FolderMarker is the row that opens another folder (e.g. the archive).
	FolderMarker
)

func (v Variant) String() string {
	switch v {
	case Regular:
		return "regular"
	case Promoted:
		return "promoted"
	case FolderMarker:
		return "folder"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Well-known folder ids.
const (
	FolderPrimary = 0
	FolderArchive = 1
)

// Dialog is one conversation entry in a list.
type Dialog struct {
	ID            int64
	Variant       Variant
	Title         string
	FolderID      int
	PinnedOrder   int // 0 when not pinned; pinned rows are numbered from 1
	UnreadCount   int
	HasUnreadMark bool
	LastActivity  int64 // unix millis
	Muted         bool
}

// Pinned reports whether the dialog carries an explicit pinned order.
func (d Dialog) Pinned() bool { return d.PinnedOrder > 0 }

// Synthetic reports whether the row is not a real conversation.
func (d Dialog) Synthetic() bool { return d.Variant != Regular }

// HasUnread reports whether the dialog has unread messages or a manual unread mark.
func (d Dialog) HasUnread() bool { return d.UnreadCount > 0 || d.HasUnreadMark }

// Peer decodes the peer kind from the dialog id.
func (d Dialog) Peer() PeerKind { return KindOf(d.ID) }

// ListType selects which family of lists a Key addresses.
type ListType uint8

const (
	// ListFolder is the plain list of a folder (primary or archive).
	ListFolder ListType = iota
	// ListFilter is a user-defined filter tab with its own pinned order.
	ListFilter
)

// Key identifies one dialog list.
type Key struct {
	Type     ListType
	FolderID int
	FilterID int
}

// FolderKey returns the key of a folder list.
func FolderKey(folderID int) Key { return Key{Type: ListFolder, FolderID: folderID} }

// FilterKey returns the key of a filter list.
func FilterKey(filterID int) Key { return Key{Type: ListFilter, FilterID: filterID} }

func (k Key) String() string {
	if k.Type == ListFilter {
		return fmt.Sprintf("filter:%d", k.FilterID)
	}
	return fmt.Sprintf("folder:%d", k.FolderID)
}
