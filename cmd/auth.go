package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/apperr"
	"marquee/internal/ui"
)

var flagEmail string

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			id, err := a.accounts.SignUp(ctx, email, password)
			if err != nil {
				return err
			}
			tok, err := a.accounts.SignIn(ctx, id.Email, password)
			if err != nil {
				return err
			}
			if err := a.sessions.Save(tok); err != nil {
				return err
			}
			fmt.Printf("Account created. Signed in as %s.\n", id.Email)
			return nil
		})
	},
}

var signinCmd = &cobra.Command{
	Use:     "signin",
	Aliases: []string{"login"},
	Short:   "Sign in",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := promptCredentials()
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			tok, err := a.accounts.SignIn(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.sessions.Save(tok); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s.\n", tok.Email)
			return nil
		})
	},
}

var signoutCmd = &cobra.Command{
	Use:     "signout",
	Aliases: []string{"logout"},
	Short:   "Sign out",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.sessions.SignOut(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			id, err := a.sessions.Current(ctx)
			if apperr.IsNotAuthenticated(err) {
				if flagJSON {
					return printJSON(map[string]any{"authenticated": false})
				}
				fmt.Println("Not signed in.")
				return nil
			}
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(map[string]any{"authenticated": true, "user_id": id.UserID, "email": id.Email})
			}
			fmt.Println(id.Email)
			return nil
		})
	},
}

func init() {
	signupCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Account email")
	signinCmd.Flags().StringVarP(&flagEmail, "email", "e", "", "Account email")
}

func promptCredentials() (string, string, error) {
	email := flagEmail
	if email == "" {
		var err error
		email, err = ui.Input("Email")
		if err != nil {
			return "", "", err
		}
	}
	password, err := ui.Password("Password")
	if err != nil {
		return "", "", err
	}
	if password == "" {
		return "", "", fmt.Errorf("no password provided")
	}
	return email, password, nil
}
