package dialog

// PeerKind is the kind of peer a dialog id refers to.
type PeerKind uint8

const (
	PeerUnknown   PeerKind = iota
	PeerUser               // users and bots
	PeerGroup              // groups and channels
	PeerEncrypted          // secret chats
	PeerFolder             // folder marker rows
)

// Positive ids may carry a tag in their high bits. Untagged positive ids are
// users, negative ids are groups and channels.
const (
	folderTag    int64 = 0x2000000000000000
	encryptedTag int64 = 0x4000000000000000
	tagMask            = folderTag | encryptedTag
)

// KindOf decodes the peer kind encoded in a dialog id.
func KindOf(id int64) PeerKind {
	switch {
	case id == 0:
		return PeerUnknown
	case id < 0:
		return PeerGroup
	case id&tagMask == encryptedTag:
		return PeerEncrypted
	case id&tagMask == folderTag:
		return PeerFolder
	case id&tagMask == 0:
		return PeerUser
	default:
		return PeerUnknown
	}
}

// FolderDialogID returns the synthetic dialog id of a folder marker row.
func FolderDialogID(folderID int) int64 {
	return folderTag | int64(uint32(folderID))
}

// EncryptedDialogID returns the dialog id of a secret chat.
func EncryptedDialogID(chatID int32) int64 {
	return encryptedTag | int64(uint32(chatID))
}
