package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xmhha/smartreadme/pkg/notice"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCommand exchanges credentials for a session token.
type loginCommand struct {
	app           *app
	email         string
	passwordStdin bool
	prompt        io.Writer
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c := &loginCommand{
				app:           a,
				email:         email,
				passwordStdin: passwordStdin,
				prompt:        cmd.ErrOrStderr(),
			}
			return c.Execute(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// Execute runs the login command.
func (c *loginCommand) Execute(ctx context.Context) error {
	in := bufio.NewReader(c.app.stdin)

	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprint(c.prompt, "Email: ")
		line, err := readLine(in)
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = line
	}

	password, err := c.readPassword(in)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	token, err := c.app.client.Login(ctx, email, password)
	if err != nil {
		c.app.log.Warn("login failed", "error", err)
		c.app.sink.Notify(notice.Error(notice.MsgLoginFailed))
		return reported(err)
	}

	if err := c.app.sessions.Write(token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	c.app.sink.Notify(notice.Success(notice.MsgLoggedIn))
	return nil
}

// readPassword reads without echo from a terminal, or a line otherwise.
func (c *loginCommand) readPassword(in *bufio.Reader) (string, error) {
	if f, ok := c.app.stdin.(*os.File); ok && !c.passwordStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.prompt, "Password: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.prompt)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if !c.passwordStdin {
		fmt.Fprint(c.prompt, "Password: ")
	}
	return readLine(in)
}

// readLine reads one line without its terminator. EOF after data is fine.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Clear(); err != nil {
				return err
			}
			a.sink.Notify(notice.Info(notice.MsgLoggedOut))
			return nil
		},
	}
}
