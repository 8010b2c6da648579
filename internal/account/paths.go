// Package account names accounts and locates their files on disk.
package account

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the base directory when set.
const HomeEnv = "DIALOGS_HOME"

// BaseDir returns $DIALOGS_HOME, or ~/.dialogs.
func BaseDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".dialogs")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// Paths locates the files of one account.
type Paths struct {
	Base string
	Name string
}

// For returns the paths of account name under BaseDir.
func For(name string) Paths {
	return Paths{Base: BaseDir(), Name: name}
}

// Dir returns the account-specific directory.
func (p Paths) Dir() string {
	return filepath.Join(p.Base, "accounts", p.Name)
}

// Socket returns the UDS socket path of the account's daemon.
func (p Paths) Socket() string {
	return filepath.Join(p.Dir(), "daemon.sock")
}

// DB returns the dialogs.db path.
func (p Paths) DB() string {
	return filepath.Join(p.Dir(), "dialogs.db")
}

// LogDir returns the log directory.
func (p Paths) LogDir() string {
	return filepath.Join(p.Dir(), "logs")
}

// Log returns the daemon log file path.
func (p Paths) Log() string {
	return filepath.Join(p.LogDir(), "dialogsd.log")
}

// Ensure creates the account directory tree with proper permissions.
func (p Paths) Ensure() error {
	for _, d := range []string{p.Dir(), p.LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
