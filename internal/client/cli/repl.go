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
	Signup(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) error

	Profile(ctx context.Context) error
	Edit(ctx context.Context) error
	Passwd(ctx context.Context) error
	Enable2FA(ctx context.Context) error
	Disable2FA(ctx context.Context) error
	Avatar(ctx context.Context) error
	Photo(ctx context.Context, path string) error
	History(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Suspend(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, signup, forgot, reset <token>, verify <token>, exit"
	helpLoggedIn  = "Available commands: profile, edit, passwd, 2fa-enable, 2fa-disable, avatar, photo <file>, history, whoami, suspend, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the GophAuth CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Command prompts read from the same reader,
// so answers typed after a command reach that command. The loop exits on
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - login            sign in, answering a second-factor challenge if asked
//	  - signup           three-step registration wizard
//	  - forgot           request a password reset link
//	  - reset <token>    set a new password from a reset link
//	  - verify <token>   confirm an email address
//
//	Logged in:
//	  - profile          show the profile
//	  - edit             change username and birthdate
//	  - passwd           change password
//	  - 2fa-enable       enroll an authenticator app
//	  - 2fa-disable      turn two-factor authentication off
//	  - avatar           pick a built-in avatar
//	  - photo <file>     crop and upload a profile photo
//	  - history          login history, newest first
//	  - whoami           inspect the session token
//	  - suspend          suspend the account
//	  - logout           sign out
//
// Errors returned by command handlers are reported by the handlers
// themselves; the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ga %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if a.isLoggedIn() {
			dispatchLoggedIn(ctx, a, cmd, args)
		} else {
			dispatchLoggedOut(ctx, a, cmd, args)
		}
	}
}

func dispatchLoggedOut(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "login":
		_ = a.Login(ctx)
	case "signup", "register":
		_ = a.Signup(ctx)
	case "forgot":
		_ = a.Forgot(ctx)
	case "reset":
		if len(args) == 0 {
			printlnFn("Usage: reset <token>")
			return
		}
		_ = a.Reset(ctx, args[0])
	case "verify":
		if len(args) == 0 {
			printlnFn("Usage: verify <token>")
			return
		}
		_ = a.Verify(ctx, args[0])
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func dispatchLoggedIn(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "profile":
		_ = a.Profile(ctx)
	case "edit":
		_ = a.Edit(ctx)
	case "passwd":
		_ = a.Passwd(ctx)
	case "2fa-enable":
		_ = a.Enable2FA(ctx)
	case "2fa-disable":
		_ = a.Disable2FA(ctx)
	case "avatar":
		_ = a.Avatar(ctx)
	case "photo":
		if len(args) == 0 {
			printlnFn("Usage: photo <file>")
			return
		}
		_ = a.Photo(ctx, strings.Join(args, " "))
	case "history":
		_ = a.History(ctx)
	case "whoami":
		_ = a.WhoAmI(ctx)
	case "suspend":
		_ = a.Suspend(ctx)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}
