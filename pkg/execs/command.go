package execs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrCommandExecution is returned when a command could not be run.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")
)

// Command is a program and its leading arguments.
type Command struct {
	// Command is the program to execute, looked up in PATH.
	Command string
	// Args are passed before any arguments given at execution time.
	Args []string
	// Env is the environment of the process. A nil Env inherits the
	// caller's environment.
	Env []string
}

// ParseCommand splits a shell-like command line, e.g. "kubectl --context=dev",
// into a [Command]. Environment variables in line are expanded.
func ParseCommand(line string) (Command, error) {
	p := shellwords.NewParser()
	p.ParseEnv = true

	words, err := p.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("parse command %q: %w", line, err)
	}

	if len(words) == 0 {
		return Command{}, ErrEmptyCommand
	}

	return Command{
		Command: words[0],
		Args:    words[1:],
	}, nil
}

// WithArgs returns a copy of c with args appended.
func (c Command) WithArgs(args ...string) Command {
	all := make([]string, 0, len(c.Args)+len(args))
	all = append(all, c.Args...)
	all = append(all, args...)
	c.Args = all

	return c
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}

	return fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " "))
}
