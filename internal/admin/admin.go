// Package admin implements the operator commands: creating a superuser and
// changing a user's role.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/services"
)

var (
	ErrUsage            = errors.New("usage: yamdb-cli [-c config.json] <createsuperuser|setrole> [flags]")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type App struct {
	users      *services.UserService
	in         *bufio.Reader
	out        io.Writer
	passwordFd int
}

// NewApp reads prompts from in and passwords from the terminal behind stdinFd.
func NewApp(us *services.UserService, in io.Reader, out io.Writer, stdinFd int) *App {
	return &App{users: us, in: bufio.NewReader(in), out: out, passwordFd: stdinFd}
}

// Run dispatches args[0] as a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "createsuperuser":
		return a.createSuperuser(ctx, args[1:])
	case "setrole":
		return a.setRole(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], ErrUsage)
	}
}

func (a *App) createSuperuser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(a.out)
	userName := fs.String("username", "", "username")
	email := fs.String("email", "", "e-mail address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *userName == "" {
		if *userName, err = getSimpleText(a.in, "Username", a.out); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = getSimpleText(a.in, "Email address", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.passwordFd, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	again, err := getPassword(a.passwordFd, "Password (again)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)
	if !bytes.Equal(password, again) {
		return ErrPasswordMismatch
	}

	u, err := a.users.CreateSuperuser(ctx, *userName, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Superuser %q created.\n", u.UserName)
	return nil
}

func (a *App) setRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("setrole", flag.ContinueOnError)
	fs.SetOutput(a.out)
	userName := fs.String("username", "", "username")
	email := fs.String("email", "", "e-mail address, instead of -username")
	role := fs.String("role", "", "user, moderator or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*userName == "") == (*email == "") || *role == "" {
		return fmt.Errorf("setrole needs one of -username or -email, and -role: %w", ErrUsage)
	}

	if *email != "" {
		u, err := a.users.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		*userName = u.UserName
	}

	u, err := a.users.SetRole(ctx, *userName, *role)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %q now has role %s.\n", u.UserName, u.Role)
	return nil
}
