package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/omhauth/internal/common"
)

// ErrUsage reports a malformed command line.
var ErrUsage = errors.New("usage")

const usage = `Available commands:
  user add [username]
  client add <name> <redirect-uri> [description]
  schema add <id> <version>
  migrate
  help, exit`

func usageError(format string) error {
	return fmt.Errorf("%w: %s", ErrUsage, format)
}

// Execute runs a single command.
func (a *App) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("no command given")
	}

	switch args[0] {
	case "user":
		if len(args) < 2 || len(args) > 3 || args[1] != "add" {
			return usageError("user add [username]")
		}
		if len(args) == 2 {
			username, err := GetSimpleText(a.reader, "Enter username", a.out)
			if err != nil {
				return err
			}
			return a.addUser(ctx, username)
		}
		return a.addUser(ctx, args[2])
	case "client":
		if len(args) < 4 || len(args) > 5 || args[1] != "add" {
			return usageError("client add <name> <redirect-uri> [description]")
		}
		description := ""
		if len(args) == 5 {
			description = args[4]
		}
		return a.addClient(ctx, args[2], args[3], description)
	case "schema":
		if len(args) != 4 || args[1] != "add" {
			return usageError("schema add <id> <version>")
		}
		return a.addSchema(ctx, args[2], args[3])
	case "migrate":
		if err := a.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Migrations applied.")
		return nil
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return usageError("unknown command " + strconv.Quote(args[0]))
	}
}

// Root runs the interactive prompt until exit or end of input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "omhauth admin (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "omhauth-admin> ")
		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)

		if len(parts) > 0 {
			if parts[0] == "exit" || parts[0] == "quit" {
				fmt.Fprintln(a.out, "Bye!")
				return
			}
			if cmdErr := a.Execute(ctx, parts); cmdErr != nil {
				fmt.Fprintln(a.out, cmdErr.Error())
			}
		}

		if err != nil {
			return
		}
	}
}

func (a *App) addUser(ctx context.Context, username string) error {
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return errors.New("passwords do not match")
	}

	u, err := a.users.Register(ctx, username, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s created.\n", u.Username)
	return nil
}

func (a *App) addClient(ctx context.Context, name, redirectURI, description string) error {
	tp, err := a.clients.Register(ctx, name, redirectURI, description)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Client %s registered.\nclient_id:     %s\nclient_secret: %s\n", tp.Name, tp.ID, tp.Secret)
	fmt.Fprintln(a.out, "The secret is shown only once.")
	return nil
}

func (a *App) addSchema(ctx context.Context, id, version string) error {
	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil || v < 1 {
		return usageError("schema version must be a positive integer")
	}

	if err := a.schemas.Register(ctx, id, v); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Schema %s version %d registered.\n", id, v)
	return nil
}
