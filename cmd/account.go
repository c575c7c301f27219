package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"studio-booking-cli/auth"
)

type accountOptions struct {
	name          string
	email         string
	passwordStdin bool
}

func newLoginCmd(env *environment) *cobra.Command {
	var opts accountOptions

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to book online",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := env.valueOrPrompt(opts.email, "Email", "email")
			if err != nil {
				return err
			}
			password, err := env.password(opts.passwordStdin)
			if err != nil {
				return err
			}
			session, err := auth.Login(cmd.Context(), env.client, email, password)
			if err != nil {
				return err
			}
			env.log.WithField("user_id", session.User.ID).Info("signed in")
			fmt.Fprintf(env.out, "Signed in as %s (%s)\n", session.DisplayName(), session.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from standard input")
	return cmd
}

func newRegisterCmd(env *environment) *cobra.Command {
	var opts accountOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := env.valueOrPrompt(opts.name, "Name", "name")
			if err != nil {
				return err
			}
			email, err := env.valueOrPrompt(opts.email, "Email", "email")
			if err != nil {
				return err
			}
			password, err := env.password(opts.passwordStdin)
			if err != nil {
				return err
			}
			session, err := auth.Register(cmd.Context(), env.client, name, email, password)
			if err != nil {
				return err
			}
			env.log.WithField("user_id", session.User.ID).Info("registered")
			fmt.Fprintf(env.out, "Welcome, %s. You are signed in.\n", session.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "your name")
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from standard input")
	return cmd
}

func newLogoutCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(env.out, "Signed out.")
			return nil
		},
	}
}

func (env *environment) valueOrPrompt(value string, label string, field string) (string, error) {
	if value != "" {
		return value, nil
	}
	return env.prompt(label, 0, requireText(field))
}

func (env *environment) password(fromStdin bool) (string, error) {
	if fromStdin {
		return readLine(env.in)
	}
	return env.prompt("Password", '*', requireText("password"))
}
