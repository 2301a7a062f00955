package commands

import (
	"pinboard/cmd/pinctl/output"

	"github.com/spf13/cobra"
)

func newSignupCmd(s *settings) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client()
			if err != nil {
				return err
			}
			user, err := c.Signup(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), user); ok {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Signed up as %s <%s>. Run `pinctl signin` next.", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (at least 8 characters)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSigninCmd(s *settings) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client()
			if err != nil {
				return err
			}
			token, err := c.Signin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := saveToken(s.tokenFile, token); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Signed in. Token saved to %s", s.tokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignoutCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeToken(s.tokenFile); err != nil {
				return err
			}
			output.Info(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
