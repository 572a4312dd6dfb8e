package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Home(ctx context.Context) error
	UploadPage(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Go(ctx context.Context, path string) error
	Delete(ctx context.Context, id string) error
	Select(ctx context.Context, path string) error
	Title(ctx context.Context, text string) error
	Submit(ctx context.Context) error
	Reset(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Page(ctx context.Context, n string) error
	Fullscreen(ctx context.Context) error
	Escape(ctx context.Context) error
	Download(ctx context.Context) error
	Show(ctx context.Context) error
}

const helpText = `Available commands:
  home | list          recent flipbooks
  upload               upload view
  open <id>            view a flipbook
  go <path>            navigate to a path (/, /upload, /flipbook/<id>)
  delete <id>          delete a flipbook (home view, asks for confirmation)
  select <path>        stage a PDF (upload view)
  title <text>         set the flipbook title (upload view)
  submit | create      upload the staged PDF
  reset | another      start a new upload
  next | prev          turn the page (viewer)
  page <n>             jump to page n (viewer)
  fullscreen | fs      toggle fullscreen (viewer)
  esc                  leave fullscreen the way the terminal would
  download             save the original PDF (viewer)
  show                 redraw the current view
  exit | quit          leave the program`

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The prompt shows the current path (from statusFn). The first token is the
// command; the rest of the line is its argument, so titles and paths may
// contain spaces. Command errors are printed and the loop continues. The
// loop exits on EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "flipbook %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, arg); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	switch cmd {
	case "home", "list":
		return a.Home(ctx)
	case "upload":
		return a.UploadPage(ctx)
	case "open":
		if arg == "" {
			return errMissingArg("open <id>")
		}
		return a.Open(ctx, arg)
	case "go":
		if arg == "" {
			return errMissingArg("go <path>")
		}
		return a.Go(ctx, arg)
	case "delete":
		if arg == "" {
			return errMissingArg("delete <id>")
		}
		return a.Delete(ctx, arg)
	case "select":
		if arg == "" {
			return errMissingArg("select <path>")
		}
		return a.Select(ctx, arg)
	case "title":
		return a.Title(ctx, arg)
	case "submit", "create":
		return a.Submit(ctx)
	case "reset", "another":
		return a.Reset(ctx)
	case "next", "n":
		return a.Next(ctx)
	case "prev", "p":
		return a.Prev(ctx)
	case "page":
		return a.Page(ctx, arg)
	case "fullscreen", "fs":
		return a.Fullscreen(ctx)
	case "esc":
		return a.Escape(ctx)
	case "download":
		return a.Download(ctx)
	case "show":
		return a.Show(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func errMissingArg(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
