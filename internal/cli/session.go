package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/linkedcraft/internal/auth"
	"github.com/suPer8Hu/linkedcraft/internal/session"
)

func NewSessionCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the dashboard session",
	}
	cmd.AddCommand(newSignInCommand(opts), newSignOutCommand(opts), newShowCommand(opts))
	return cmd
}

func newSignInCommand(opts *RootOptions) *cobra.Command {
	var userID, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Issue an access token and publish it as the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := auth.SignAccessToken(userID, email, opts.Config.JWTSecret, ttl)
			if err != nil {
				return err
			}

			b, closeFn, err := opts.Deps.Backend(ctx, opts.Config)
			if err != nil {
				return err
			}
			defer closeFn()

			sess, err := b.SignIn(ctx, token)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}
			st := session.State{Identity: &sess.User, Ready: true}
			return printState(cmd, opts, st)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "identity id (required)")
	cmd.Flags().StringVar(&email, "email", "", "identity email")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "access token lifetime")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func newSignOutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, closeFn, err := opts.Deps.Backend(ctx, opts.Config)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := b.SignOut(ctx); err != nil {
				return fmt.Errorf("sign out: %w", err)
			}
			return printState(cmd, opts, session.State{Ready: true})
		},
	}
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, closeFn, err := opts.Deps.Backend(ctx, opts.Config)
			if err != nil {
				return err
			}
			defer closeFn()

			st, err := readState(ctx, b)
			if err != nil {
				return err
			}
			return printState(cmd, opts, st)
		},
	}
}

func printState(cmd *cobra.Command, opts *RootOptions, st session.State) error {
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return json.NewEncoder(out).Encode(struct {
			Ready         bool              `json:"ready"`
			Authenticated bool              `json:"authenticated"`
			User          *session.Identity `json:"user"`
		}{st.Ready, st.Authenticated(), st.Identity})
	}

	if !st.Authenticated() {
		_, err := fmt.Fprintln(out, "signed out")
		return err
	}
	if st.Identity.Email != "" {
		_, err := fmt.Fprintf(out, "signed in as %s <%s>\n", st.Identity.ID, st.Identity.Email)
		return err
	}
	_, err := fmt.Fprintf(out, "signed in as %s\n", st.Identity.ID)
	return err
}
