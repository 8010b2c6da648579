package account

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/dialogs/internal/config"
)

func TestPaths(t *testing.T) {
	p := Paths{Base: "/base", Name: "work"}

	tests := []struct {
		got, want string
	}{
		{p.Dir(), "/base/accounts/work"},
		{p.Socket(), "/base/accounts/work/daemon.sock"},
		{p.DB(), "/base/accounts/work/dialogs.db"},
		{p.Log(), "/base/accounts/work/logs/dialogsd.log"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBaseDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	if got := BaseDir(); got != dir {
		t.Errorf("BaseDir() = %q, want %q", got, dir)
	}
	if got := For("main").Base; got != dir {
		t.Errorf("For(main).Base = %q, want %q", got, dir)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestEnsure(t *testing.T) {
	p := Paths{Base: t.TempDir(), Name: "test"}
	if err := p.Ensure(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p.LogDir())
	if err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("permission = %o, want 0700", info.Mode().Perm())
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "work123", false},
		{"valid with hyphen", "my-account", false},
		{"valid with underscore", "my_account", false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my account", true},
		{"dot", "my.account", true},
		{"slash", "my/account", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultAccount = "work"

	if got := Resolve("flag", cfg); got != "flag" {
		t.Errorf("flag override = %q", got)
	}
	if got := Resolve("", cfg); got != "work" {
		t.Errorf("config default = %q", got)
	}
	if got := Resolve("", nil); got != DefaultName {
		t.Errorf("fallback = %q", got)
	}
}
