package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nestadmin/internal/admin"
	"nestadmin/internal/logging"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit the operator profile",
	}

	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the profile stored by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				profile, err := svc.Profile(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, profile)
				}
				printKeyValues(cmd, profile)
				return nil
			})
		},
	})

	payload := &payloadFlags{}
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changes, err := payload.object(ctx.stdin)
			if err != nil {
				return err
			}
			rt, err := ctx.authenticated(cmd)
			if err != nil {
				return err
			}
			profile, err := rt.admin.UpdateProfile(cmd.Context(), changes)
			if err != nil {
				return err
			}
			if err := rt.session.UpdateProfile(profile); err != nil {
				rt.logger.Warn("store updated profile locally failed", logging.FieldError, err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, profile)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			return nil
		},
	}
	payload.register(updateCmd)
	profileCmd.AddCommand(updateCmd)

	var passwordStdin bool
	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !passwordStdin {
				return errors.New("pass --password-stdin and provide the current and new password on separate lines")
			}
			reader := bufio.NewReader(ctx.stdin)
			current, err := readLine(reader)
			if err != nil {
				return fmt.Errorf("read current password: %w", err)
			}
			next, err := readLine(reader)
			if err != nil {
				return fmt.Errorf("read new password: %w", err)
			}
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				change := admin.PasswordChange{CurrentPassword: current, NewPassword: next}
				if err := svc.ChangePassword(cmd.Context(), change); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
				return nil
			})
		},
	}
	passwordCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read current and new password from stdin")
	profileCmd.AddCommand(passwordCmd)

	profileCmd.AddCommand(&cobra.Command{
		Use:   "themes",
		Short: "List themes available to the operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAdmin(cmd, func(svc *admin.Service) error {
				themes, err := svc.UserThemes(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, themes)
				}
				rows := make([][]string, 0, len(themes))
				for _, t := range themes {
					rows = append(rows, []string{t.Key(), t.Name, t.Status})
				}
				printTable(cmd, []string{"ID", "Name", "Status"}, rows, nil)
				return nil
			})
		},
	})

	return profileCmd
}

func newAccountCommand(ctx *commandContext) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Registration and password recovery",
	}

	var name, email string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (password read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readLine(bufio.NewReader(ctx.stdin))
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			reg := admin.Registration{Name: name, Email: email, Password: password}
			if err := rt.admin.Register(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run `nestadmin login` to sign in.")
			return nil
		},
	}
	registerCmd.Flags().StringVar(&name, "name", "", "Display name")
	registerCmd.Flags().StringVar(&email, "email", "", "Account email")
	accountCmd.AddCommand(registerCmd)

	accountCmd.AddCommand(&cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Email a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			if err := rt.admin.ForgotPassword(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "If the address is registered, a reset link is on its way.")
			return nil
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with a reset token (password read from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readLine(bufio.NewReader(ctx.stdin))
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			if err := rt.admin.ResetPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password reset")
			return nil
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "verify-email <token>",
		Short: "Confirm an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.runtime()
			if err != nil {
				return err
			}
			if err := rt.admin.VerifyEmail(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email verified")
			return nil
		},
	})

	return accountCmd
}
