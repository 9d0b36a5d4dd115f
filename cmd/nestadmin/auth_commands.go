package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nestadmin/internal/session"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			reader := bufio.NewReader(ctx.stdin)
			creds, err := readCredentials(cmd, reader, ctx.stdin, strings.TrimSpace(email), passwordStdin)
			if err != nil {
				return err
			}
			if err := rt.session.Login(cmd.Context(), creds); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			current := rt.session.Current()
			if ctx.jsonOutput() {
				return writeJSON(cmd, sessionView(current))
			}
			name := current.DisplayName()
			if name == "" {
				name = creds.Email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", colorize(cmd.OutOrStdout(), ansiGreen, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func readCredentials(cmd *cobra.Command, reader *bufio.Reader, stdin io.Reader, email string, passwordStdin bool) (session.Credentials, error) {
	prompt := cmd.ErrOrStderr()
	if email == "" {
		if passwordStdin {
			return session.Credentials{}, errors.New("--email is required with --password-stdin")
		}
		fmt.Fprint(prompt, "Email: ")
		line, err := readLine(reader)
		if err != nil {
			return session.Credentials{}, fmt.Errorf("read email: %w", err)
		}
		email = line
	}
	if email == "" {
		return session.Credentials{}, errors.New("email is required")
	}

	var password string
	if passwordStdin {
		line, err := readLine(reader)
		if err != nil {
			return session.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = line
	} else {
		file, ok := stdin.(*os.File)
		if !ok || !term.IsTerminal(int(file.Fd())) {
			return session.Credentials{}, errors.New("stdin is not a terminal; use --password-stdin")
		}
		fmt.Fprint(prompt, "Password: ")
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return session.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = string(data)
	}
	if password == "" {
		return session.Credentials{}, errors.New("password is required")
	}
	return session.Credentials{Email: email, Password: password}, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			rt.session.Logout(cmd.Context())
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.authenticated(cmd)
			if err != nil {
				return err
			}
			current := rt.session.Current()
			if ctx.jsonOutput() {
				return writeJSON(cmd, current.Profile)
			}
			out := cmd.OutOrStdout()
			name := current.DisplayName()
			if name == "" {
				name = "(profile unavailable)"
			}
			fmt.Fprintln(out, name)
			if email := current.Profile.Field("email"); email != "" && email != name {
				fmt.Fprintf(out, "Email: %s\n", email)
			}
			if role := current.Profile.Field("role"); role != "" {
				fmt.Fprintf(out, "Role:  %s\n", role)
			}
			return nil
		},
	}
}

type sessionStatus struct {
	State     string          `json:"state"`
	Backend   string          `json:"backend,omitempty"`
	User      string          `json:"user,omitempty"`
	ExpiresAt string          `json:"expiresAt,omitempty"`
	Expiring  bool            `json:"expiringSoon,omitempty"`
	LastError string          `json:"lastError,omitempty"`
	Profile   session.Profile `json:"profile,omitempty"`
}

func sessionView(s session.Session) sessionStatus {
	view := sessionStatus{
		State:     s.State(),
		User:      s.DisplayName(),
		LastError: s.LastError,
		Profile:   s.Profile,
	}
	if !s.ExpiresAt.IsZero() {
		view.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return view
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or refresh the stored session",
	}

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether a usable session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			view := sessionView(rt.session.RestoreSession(cmd.Context()))
			view.Expiring = rt.session.ExpiringSoon(rt.cfg.Auth.RefreshLeeway())
			view.Backend = rt.client.BaseURL()
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			state := view.State
			if view.State == "authenticated" {
				state = colorize(out, ansiGreen, state)
			} else {
				state = colorize(out, ansiRed, state)
			}
			fmt.Fprintf(out, "State:   %s\n", state)
			fmt.Fprintf(out, "Backend: %s\n", view.Backend)
			if view.User != "" {
				fmt.Fprintf(out, "User:    %s\n", view.User)
			}
			if view.ExpiresAt != "" {
				expires := view.ExpiresAt
				if view.Expiring {
					expires = colorize(out, ansiRed, expires+" (refresh soon)")
				}
				fmt.Fprintf(out, "Expires: %s\n", expires)
			}
			if view.LastError != "" {
				fmt.Fprintf(out, "Note:    %s\n", view.LastError)
			}
			return nil
		},
	})

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.authenticated(cmd)
			if err != nil {
				return err
			}
			if _, err := rt.session.RefreshToken(cmd.Context()); err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}
			view := sessionView(rt.session.Current())
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			if view.ExpiresAt != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed; expires %s\n", view.ExpiresAt)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Token refreshed")
			}
			return nil
		},
	})

	return sessionCmd
}
