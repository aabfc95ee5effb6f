// Package shell implements the interactive command loop of the file system.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/outofforest/mfs"
)

const (
	// Prompt is printed before each command is read.
	Prompt = "mfs> "

	maxTokens = 5
)

// Shell reads commands and executes them against the file system.
type Shell struct {
	fs       *mfs.FileSystem
	log      *zap.Logger
	registry map[string]Command
	commands []Command
}

// New creates shell with built-in commands registered.
func New(fs *mfs.FileSystem, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Shell{
		fs:       fs,
		log:      log,
		registry: map[string]Command{},
	}
	for _, cmd := range builtinCommands(s) {
		s.Register(cmd)
	}
	return s
}

// Register adds the command to the shell. Command registered later overrides the earlier one with the same name.
func (s *Shell) Register(cmd Command) {
	for _, n := range append([]string{cmd.Name()}, cmd.Aliases()...) {
		s.registry[n] = cmd
	}
	s.commands = append(s.commands, cmd)
}

// Commands returns registered commands.
func (s *Shell) Commands() []Command {
	list := make([]Command, 0, len(s.commands))
	for _, cmd := range s.commands {
		if s.registry[cmd.Name()] == cmd {
			list = append(list, cmd)
		}
	}
	return list
}

// Run executes commands read from in until exit command, end of input or context cancellation.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		if _, err := io.WriteString(out, Prompt); err != nil {
			return errors.WithStack(err)
		}
		if !scanner.Scan() {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return errors.WithStack(err)
			}
			return errors.WithStack(scanner.Err())
		}

		exit, err := s.Execute(scanner.Text(), out)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// Execute runs single command line. It returns true if shell should exit.
// Only errors related to the output are returned, command failures are reported to the output.
func (s *Shell) Execute(line string, out io.Writer) (bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false, nil
	}
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}

	cmd, exists := s.registry[tokens[0]]
	if !exists {
		_, err := io.WriteString(out, "Error: Invalid Command.\n\n")
		return false, errors.WithStack(err)
	}

	err := cmd.Run(&Context{
		Args: tokens[1:],
		FS:   s.fs,
		Out:  out,
	})
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, errExit):
		return true, nil
	}

	s.log.Debug("Command failed", zap.String("command", cmd.Name()), zap.Strings("args", tokens[1:]),
		zap.Error(err))
	_, err = fmt.Fprintf(out, "%s\n\n", message(cmd, err, s.fs.Config().MaxNameLength))
	return false, errors.WithStack(err)
}

func message(cmd Command, err error, maxNameLength int) string {
	switch {
	case errors.Is(err, ErrUsage):
		return fmt.Sprintf("Error:\tInvalid input.\nUsage:\t%s", cmd.Usage())
	case errors.Is(err, mfs.ErrInvalidArgument):
		return fmt.Sprintf("Error: File name must be at most %d characters.", maxNameLength)
	case errors.Is(err, mfs.ErrNotFound), errors.Is(err, mfs.ErrSourceNotFound):
		return "Error: File not found."
	case errors.Is(err, mfs.ErrAlreadyExists):
		return "Error: File already exists."
	case errors.Is(err, mfs.ErrInsufficientSpace):
		return "Error: Not enough disk space."
	case errors.Is(err, mfs.ErrFileTooLarge):
		return "Error: File is too large."
	case errors.Is(err, mfs.ErrNoFreeDirectoryEntry):
		return "Error: Not enough directory entries."
	case errors.Is(err, mfs.ErrNoFreeInode):
		return "Error: No free inodes."
	case errors.Is(err, mfs.ErrNoFreeBlock):
		return "Error: No free block available."
	case errors.Is(err, mfs.ErrDestinationUnwritable):
		return "Error: Could not open output file."
	default:
		return fmt.Sprintf("Error: %s", err)
	}
}
