package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Board(ctx context.Context) error
	RegisterManifest(ctx context.Context) error
	Dossier(ctx context.Context, id string) error
	Start(ctx context.Context, id string) error
	Finalize(ctx context.Context, id string) error
	Sign(ctx context.Context, id string) error
	Deliver(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Attach(ctx context.Context, id string) error
	Fetch(ctx context.Context, manifestID, attachmentID string) error
	SetFilter(ctx context.Context, dimension, value string) error
	Hour(ctx context.Context, value string, additive bool) error
	ClearFilter(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// runREPL starts a read-eval-print loop over the dashboard commands.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - board | b         — render the board under the current filter
//	  - register          — register a new manifest (interactive)
//	  - dossier <id>      — full drill-down of one manifest
//	  - start <id>        — begin handling
//	  - finalize <id>     — record handling completion
//	  - sign <id>         — record the representative's signature
//	  - deliver <id>      — deliver (requires a recorded signature)
//	  - cancel <id>       — cancel a non-terminal manifest
//	  - edit <id>         — edit a still-received manifest (interactive)
//	  - attach <id>       — upload a document to a manifest
//	  - fetch <id> <att>  — download an attachment
//	  - carrier|shift|operator|bucket|find|violations <v> — set one filter dimension
//	  - hour <h>          — select a single received-hour
//	  - hour +<h>         — toggle an hour in the multi-hour selection
//	  - hour clear        — drop the hour selection
//	  - clear             — reset every filter dimension
//	  - refresh           — poll the store now
//	  - logout            — log out
//	  - exit | quit       — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mao> %s ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Commands: (b)oard, register, dossier <id>, start <id>, finalize <id>, sign <id>, deliver <id>, cancel <id>, edit <id>, attach <id>, fetch <id> <att>")
				printlnFn("Filters:  carrier, shift, operator, bucket, find, violations, hour <h>|+<h>|clear, clear, refresh")
				printlnFn("Session:  logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "b", "board":
			_ = a.Board(ctx)

		case "register":
			_ = a.RegisterManifest(ctx)

		case "dossier":
			if len(args) != 1 {
				printlnFn("Usage: dossier <id>")
				continue
			}
			_ = a.Dossier(ctx, args[0])

		case "start":
			if len(args) != 1 {
				printlnFn("Usage: start <id>")
				continue
			}
			_ = a.Start(ctx, args[0])

		case "finalize":
			if len(args) != 1 {
				printlnFn("Usage: finalize <id>")
				continue
			}
			_ = a.Finalize(ctx, args[0])

		case "sign":
			if len(args) != 1 {
				printlnFn("Usage: sign <id>")
				continue
			}
			_ = a.Sign(ctx, args[0])

		case "deliver":
			if len(args) != 1 {
				printlnFn("Usage: deliver <id>")
				continue
			}
			_ = a.Deliver(ctx, args[0])

		case "cancel":
			if len(args) != 1 {
				printlnFn("Usage: cancel <id>")
				continue
			}
			_ = a.Cancel(ctx, args[0])

		case "edit":
			if len(args) != 1 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "attach":
			if len(args) != 1 {
				printlnFn("Usage: attach <id>")
				continue
			}
			_ = a.Attach(ctx, args[0])

		case "fetch":
			if len(args) != 2 {
				printlnFn("Usage: fetch <id> <attachment-id>")
				continue
			}
			_ = a.Fetch(ctx, args[0], args[1])

		case "carrier", "shift", "operator", "bucket", "find", "violations":
			value := ""
			if len(args) > 0 {
				value = strings.Join(args, " ")
			}
			_ = a.SetFilter(ctx, cmd, value)

		case "hour":
			if len(args) != 1 {
				printlnFn("Usage: hour <0-23> | hour +<0-23> | hour clear")
				continue
			}
			if args[0] == "clear" {
				_ = a.Hour(ctx, "", false)
				continue
			}
			additive := strings.HasPrefix(args[0], "+")
			_ = a.Hour(ctx, strings.TrimPrefix(args[0], "+"), additive)

		case "clear":
			_ = a.ClearFilter(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
