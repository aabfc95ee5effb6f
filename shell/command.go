package shell

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/outofforest/mfs"
)

// Command represents a shell command.
type Command interface {
	Name() string
	Aliases() []string
	Usage() string
	Brief() string
	Run(ctx *Context) error
}

// Context represents the context the command is executed in.
type Context struct {
	Args []string
	FS   *mfs.FileSystem
	Out  io.Writer
}

// ErrUsage is returned when command is called with wrong arguments.
var ErrUsage = errors.New("invalid usage")

var errExit = errors.New("exit")

type command struct {
	name    string
	aliases []string
	usage   string
	brief   string
	minArgs int
	maxArgs int
	run     func(ctx *Context) error
}

func (c *command) Name() string      { return c.name }
func (c *command) Aliases() []string { return c.aliases }
func (c *command) Usage() string     { return c.usage }
func (c *command) Brief() string     { return c.brief }

func (c *command) Run(ctx *Context) error {
	if len(ctx.Args) < c.minArgs || len(ctx.Args) > c.maxArgs {
		return errors.WithStack(ErrUsage)
	}
	return c.run(ctx)
}

func builtinCommands(s *Shell) []Command {
	return []Command{
		&command{
			name:    "put",
			usage:   "put <filename> [name]",
			brief:   "Copy the file from the host into the file system.",
			minArgs: 1,
			maxArgs: 2,
			run: func(ctx *Context) error {
				name := ctx.Args[0]
				if len(ctx.Args) > 1 {
					name = ctx.Args[1]
				}
				return ctx.FS.Put(ctx.Args[0], name)
			},
		},
		&command{
			name:    "get",
			usage:   "get <filename> [newfilename]",
			brief:   "Copy the file from the file system to the host.",
			minArgs: 1,
			maxArgs: 2,
			run: func(ctx *Context) error {
				destination := ctx.Args[0]
				if len(ctx.Args) > 1 {
					destination = ctx.Args[1]
				}
				return ctx.FS.Get(ctx.Args[0], destination)
			},
		},
		&command{
			name:    "del",
			usage:   "del <filename>",
			brief:   "Delete the file. It may be restored until the next put or flush.",
			minArgs: 1,
			maxArgs: 1,
			run: func(ctx *Context) error {
				return ctx.FS.SoftDelete(ctx.Args[0])
			},
		},
		&command{
			name:    "purge",
			usage:   "purge <filename>",
			brief:   "Delete the file and release its space immediately.",
			minArgs: 1,
			maxArgs: 1,
			run: func(ctx *Context) error {
				return ctx.FS.Delete(ctx.Args[0])
			},
		},
		&command{
			name:    "undelete",
			aliases: []string{"undel"},
			usage:   "undelete <filename>",
			brief:   "Restore the deleted file.",
			minArgs: 1,
			maxArgs: 1,
			run: func(ctx *Context) error {
				return ctx.FS.Undelete(ctx.Args[0])
			},
		},
		&command{
			name:  "flush",
			usage: "flush",
			brief: "Release space of all deleted files.",
			run: func(ctx *Context) error {
				n, err := ctx.FS.Flush()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(ctx.Out, "flush: %d files reclaimed.\n", n)
				return errors.WithStack(err)
			},
		},
		&command{
			name:    "list",
			aliases: []string{"ls"},
			usage:   "list",
			brief:   "List stored files.",
			run: func(ctx *Context) error {
				files, err := ctx.FS.List()
				if err != nil {
					return err
				}
				if len(files) == 0 {
					_, err := fmt.Fprintln(ctx.Out, "list: No files found.")
					return errors.WithStack(err)
				}
				for _, f := range files {
					if _, err := fmt.Fprintf(ctx.Out, "%d\t%s\t%s\n", f.Size, f.Created.Format(time.ANSIC),
						f.Name); err != nil {
						return errors.WithStack(err)
					}
				}
				return nil
			},
		},
		&command{
			name:  "df",
			usage: "df",
			brief: "Print free disk space.",
			run: func(ctx *Context) error {
				_, err := fmt.Fprintf(ctx.Out, "Disk Space: %d bytes.\n", ctx.FS.FreeSpace())
				return errors.WithStack(err)
			},
		},
		&command{
			name:  "help",
			usage: "help",
			brief: "Print available commands.",
			run: func(ctx *Context) error {
				commands := s.Commands()
				sort.Slice(commands, func(i, j int) bool {
					return commands[i].Name() < commands[j].Name()
				})
				for _, cmd := range commands {
					if _, err := fmt.Fprintf(ctx.Out, "%-30s%s\n", cmd.Usage(), cmd.Brief()); err != nil {
						return errors.WithStack(err)
					}
				}
				return nil
			},
		},
		&command{
			name:    "exit",
			aliases: []string{"quit"},
			usage:   "exit",
			brief:   "Leave the shell.",
			run: func(_ *Context) error {
				return errExit
			},
		},
	}
}
