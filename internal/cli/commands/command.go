package commands

import (
	"CodeVault/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <login> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// Remote помечает команды, которые обращаются к серверу (--base-url, токен из login).
// Остальные работают только с локальной базой кодов.
type Remote interface {
	Remote() bool
}

// IsRemote сообщает, нужен ли команде сервер.
func IsRemote(c Command) bool {
	r, ok := c.(Remote)
	return ok && r.Remote()
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text: local code commands first, then server ones.
func FormatGlobalUsage() string {
	lines := []string{
		"CodeVault CLI",
		"",
		"Usage:",
		"  cvcli [--pin <PIN>] [--advanced] [--client-db <dir>] [--base-url <host:port>] <command> [args]",
		"",
	}
	var local, remote []Command
	for _, c := range List() {
		if IsRemote(c) {
			remote = append(remote, c)
		} else {
			local = append(local, c)
		}
	}
	lines = appendSection(lines, "Codes (local database):", local)
	lines = appendSection(lines, "Server:", remote)
	return strings.Join(lines, "\n") + "\n"
}

func appendSection(lines []string, title string, cmds []Command) []string {
	if len(cmds) == 0 {
		return lines
	}
	lines = append(lines, title)
	for _, c := range cmds {
		lines = append(lines, fmt.Sprintf("  %-34s %s", c.Usage(), c.Description()))
	}
	return append(lines, "")
}
