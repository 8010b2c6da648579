// Package lock keeps a single daemon per account.
package lock

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the lock file kept in the account directory.
const FileName = "LOCK"

// Owner describes the process holding an account lock.
type Owner struct {
	PID     int       `toml:"pid"`
	Account string    `toml:"account"`
	Since   time.Time `toml:"since"`
}

// HeldError is returned when another process holds the account lock.
type HeldError struct {
	Owner Owner
	Path  string
}

func (e *HeldError) Error() string {
	if e.Owner.Since.IsZero() {
		return fmt.Sprintf("account lock held by PID %d (%s)", e.Owner.PID, e.Path)
	}
	return fmt.Sprintf("account lock held by PID %d since %s (%s)",
		e.Owner.PID, e.Owner.Since.Format(time.RFC3339), e.Path)
}

// Holder returns the lock owner if err is a HeldError.
func Holder(err error) (Owner, bool) {
	var held *HeldError
	if errors.As(err, &held) {
		return held.Owner, true
	}
	return Owner{}, false
}

// Lock is an acquired account lock.
type Lock struct {
	file  *os.File
	path  string
	owner Owner
}

// Acquire takes the exclusive lock of the account directory dir, creating
// it if needed. It returns a HeldError if another process holds it.
func Acquire(dir, account string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create account dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		owner, _ := decode(f)
		_ = f.Close()
		return nil, &HeldError{Owner: owner, Path: path}
	}

	owner := Owner{PID: os.Getpid(), Account: account, Since: time.Now().UTC().Truncate(time.Second)}
	if err := write(f, owner); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write lock file: %w", err)
	}
	return &Lock{file: f, path: path, owner: owner}, nil
}

// Owner returns what this process recorded in the lock file.
func (l *Lock) Owner() Owner { return l.owner }

// Release removes the lock file and drops the lock. It is safe to call on
// a nil or already released lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadOwner reports who holds the lock of dir without taking it. It returns
// an error wrapping fs.ErrNotExist when no daemon holds the lock.
func ReadOwner(dir string) (Owner, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		return Owner{}, err
	}
	defer func() { _ = f.Close() }()
	return decode(f)
}

func write(f *os.File, o Owner) error {
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return toml.NewEncoder(f).Encode(o)
}

func decode(r io.ReadSeeker) (Owner, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Owner{}, err
	}
	var o Owner
	_, err := toml.NewDecoder(r).Decode(&o)
	return o, err
}
