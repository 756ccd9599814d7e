package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		d, err := newDeps(cmd.Context(), rt.cfg, rt.logger, nil)
		if err != nil {
			return err
		}
		defer d.close()

		return runWhoami(cmd.Context(), cmd.OutOrStdout(), d.authenticator(noWallet{}, rt.cfg))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session and cached data",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)
		d, err := newDeps(cmd.Context(), rt.cfg, rt.logger, nil)
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.authenticator(noWallet{}, rt.cfg).Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runWhoami(ctx context.Context, out io.Writer, auth *service.Authenticator) error {
	session, err := auth.CurrentSession(ctx)
	switch {
	case errors.Is(err, core.ErrNoSession):
		return errors.New("not logged in, run 'walletauth login'")
	case errors.Is(err, core.ErrTokenExpired):
		return errors.New("session expired, run 'walletauth login'")
	case err != nil:
		return err
	}

	if jsonOutput {
		fmt.Fprintln(out, formatSessionJSON(session))
	} else {
		fmt.Fprint(out, formatSessionHuman(session))
	}
	return nil
}

// noWallet stands in where a command only reads or clears the session
type noWallet struct{}

var _ ports.WalletProvider = noWallet{}

func (noWallet) Account(ctx context.Context) (core.Account, error) {
	return core.Account{}, core.NewAuthError(core.WalletError, "no wallet", nil)
}

func (noWallet) Sign(ctx context.Context, message string, account core.Account) (core.SignedChallenge, error) {
	return core.SignedChallenge{}, core.NewAuthError(core.WalletError, "no wallet", nil)
}
