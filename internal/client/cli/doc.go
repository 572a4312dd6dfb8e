// Package cli provides the interactive flipbook terminal client.
//
// It wires configuration, the REST client, the three view controllers, the
// routing shell and the terminal stand-ins for the browser widgets (page
// flip book, fullscreen chrome, file picker) behind a line-oriented REPL.
//
// Typical flow: the recent list is shown on start; "open <id>" views a
// flipbook, "upload" then "select", "title" and "submit" create one, and
// "delete <id>" removes one after a y/N confirmation read from the same
// input as the commands.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and helpText for details.
package cli
