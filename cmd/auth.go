package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/meetbook/internal/google"
)

func newAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long: `Authorize meetbook to manage the shared Google Calendar and create Meet
links. Open the printed URL, grant access and paste the authorization code.
The token is stored in the configured token directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cliApplication()
			if err != nil {
				return err
			}
			if app.auth == nil {
				return errors.New("authorization is only needed for the google calendar provider")
			}
			if app.auth.OAuth.ClientID == "" {
				return errors.New("google client id is not configured (set google.clientid or MEETBOOK_GOOGLE_CLIENTID)")
			}
			saver, ok := app.auth.Tokens.(google.TokenSaver)
			if !ok {
				return errors.New("token provider cannot store tokens")
			}

			if code == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to authorize account %q:\n\n%s\n\n", app.auth.Account, google.AuthURL(app.auth.OAuth, "meetbook"))
				fmt.Fprint(cmd.OutOrStdout(), "Paste the authorization code: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read authorization code: %w", err)
				}
				code = strings.TrimSpace(line)
			}
			if code == "" {
				return errors.New("no authorization code given")
			}

			tok, err := google.Exchange(cmd.Context(), app.auth.OAuth, code)
			if err != nil {
				return err
			}
			if err := saver.SaveTokenForAccount(cmd.Context(), app.auth.Account, tok); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization saved for account %q.\n", app.auth.Account)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted for when empty)")

	return cmd
}
