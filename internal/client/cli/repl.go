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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Follow(ctx context.Context, userID string) error
	Suggested(ctx context.Context) error
	Profile(ctx context.Context, userID string) error
	EditProfile(ctx context.Context) error
	Online(ctx context.Context) error
	Notifications(ctx context.Context) error
	AddPost(ctx context.Context) error
	Like(ctx context.Context, postID string) error
	Dislike(ctx context.Context, postID string) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit", or until ctx ends.
//
//	Not logged in:
//	  help, register, login, exit | quit
//
//	Logged in:
//	  help
//	  follow <userId>    toggle following a user
//	  suggested          list other users
//	  profile [userId]   show a profile (own by default)
//	  editprofile        change bio, gender or picture
//	  online             show who is online
//	  notifications      show received notifications
//	  post               publish a post
//	  like <postId>, dislike <postId>
//	  logout, exit | quit
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("gg %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: register, login, exit")
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			default:
				printlnFn("Unknown command or login required:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: follow <id>, suggested, profile [id], editprofile, online, notifications, post, like <id>, dislike <id>, logout, exit")

		case "follow":
			if id, ok := oneArg(args, "follow <userId>"); ok {
				_ = a.Follow(ctx, id)
			}

		case "suggested":
			_ = a.Suggested(ctx)

		case "profile":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			_ = a.Profile(ctx, id)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "online":
			_ = a.Online(ctx)

		case "notifications", "n":
			_ = a.Notifications(ctx)

		case "post":
			_ = a.AddPost(ctx)

		case "like":
			if id, ok := oneArg(args, "like <postId>"); ok {
				_ = a.Like(ctx, id)
			}

		case "dislike":
			if id, ok := oneArg(args, "dislike <postId>"); ok {
				_ = a.Dislike(ctx, id)
			}

		case "logout":
			_ = a.Logout(ctx)

		case "register", "login":
			printlnFn("Already logged in, logout first")

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func oneArg(args []string, usage string) (string, bool) {
	if len(args) != 1 {
		printlnFn("Usage:", usage)
		return "", false
	}
	return args[0], true
}
