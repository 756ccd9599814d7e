package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
	"github.com/spf13/cobra"
)

var loginAddress string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign the login challenge and store a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		ctx := cmd.Context()

		d, err := newDeps(ctx, rt.cfg, rt.logger, nil)
		if err != nil {
			return err
		}
		defer d.close()

		w, closeWallet, err := openWallet(ctx, rt.cfg, !assumeYes)
		if err != nil {
			return err
		}
		defer closeWallet()

		return runLogin(ctx, cmd.OutOrStdout(), d.authenticator(w, rt.cfg), loginAddress)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginAddress, "address", "", "Account to log in with (default: the wallet's first account)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context, out io.Writer, auth *service.Authenticator, address string) error {
	var (
		session *core.Session
		err     error
	)
	if address != "" {
		session, err = auth.Authenticate(ctx, core.Account{Address: address})
	} else {
		session, err = auth.Login(ctx)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		fmt.Fprintln(out, formatSessionJSON(session))
	} else {
		fmt.Fprint(out, formatSessionHuman(session))
	}
	return nil
}

func formatSessionHuman(s *core.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Logged in as %s\n", displayName(&s.User))
	fmt.Fprintf(&b, "  Address:  %s\n", s.Address)
	fmt.Fprintf(&b, "  User ID:  %s\n", s.User.ID)
	for _, acc := range s.User.EthAccounts {
		fmt.Fprintf(&b, "  SAN:      %s (%s)\n", acc.SanBalance.String(), acc.Address)
	}
	if s.ExpiresAt.IsZero() {
		b.WriteString("  Expires:  never\n")
	} else {
		fmt.Fprintf(&b, "  Expires:  %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return b.String()
}

func formatSessionJSON(s *core.Session) string {
	// The token stays out of machine output
	out := *s
	out.Token = ""
	data, _ := json.MarshalIndent(out, "", "  ")
	return string(data)
}

func displayName(u *core.User) string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
