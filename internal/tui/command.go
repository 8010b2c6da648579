package tui

import (
	"fmt"
	"strings"

	"github.com/matheus3301/dialogs/internal/action"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':').
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	parts := strings.SplitN(input, " ", 2)
	cmd := Command{Name: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		cmd.Args = strings.TrimSpace(parts[1])
	}
	return cmd
}

// Kind returns the action a command dispatches. Reorder is produced by
// edit mode only and is refused here.
func (c Command) Kind() (action.Kind, error) {
	k, err := action.ParseKind(c.Name)
	if err != nil {
		return action.None, err
	}
	if k == action.None || k == action.Reorder {
		return action.None, fmt.Errorf("%q is not a dialog action", c.Name)
	}
	return k, nil
}
