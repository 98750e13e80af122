package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help                           show available commands
//	  - login                          authenticate
//	  - exit | quit                    leave the program
//
//	Logged in:
//	  - (l)ist [limit]                 list stored files
//	  - upload <local> [name]          store a local file
//	  - download <name> [local]        fetch a stored file
//	  - rename <old> <new>             rename a stored file
//	  - delete <name>                  remove a stored file
//	  - logout                         end the session
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cs %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, upload, download, rename, delete, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx, args)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "upload", "put":
			cmdErr = a.Upload(ctx, args)

		case "download", "get":
			cmdErr = a.Download(ctx, args)

		case "rename", "mv":
			cmdErr = a.Rename(ctx, args)

		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
	}
}
