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
	Go(ctx context.Context, page string) error
	Profile(ctx context.Context) error
	Collections(ctx context.Context) error
	ServerTime(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	help            — show available commands
//	login           — authenticate
//	logout          — end the session
//	go <page>       — navigate through the route guard
//	profile         — show the authenticated profile
//	data            — show hydrated collection counts
//	time            — show the gateway's current date
//	exit | quit     — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal> %s > ", statusFn()))
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
				printlnFn("Available commands: go <page>, profile, data, time, logout, exit")
			} else {
				printlnFn("Available commands: login, go <page>, time, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "go":
			if len(args) == 0 {
				printlnFn("Usage: go <page>")
				continue
			}
			_ = a.Go(ctx, args[0])

		case "profile":
			_ = a.Profile(ctx)

		case "data":
			_ = a.Collections(ctx)

		case "time":
			_ = a.ServerTime(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
