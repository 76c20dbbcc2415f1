package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/credential"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored OpenAI API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Prompt for a key and store it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, store, err := newKeyStore(cmd)
		if err != nil {
			return err
		}
		key, err := a.prompter.Secret(cmd.Context(), credential.PromptLabel)
		if err != nil {
			return common.NewAppError(common.CodeInput, "read api key", err)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return common.NewAppError(common.CodeInput, "read api key", credential.ErrEmpty)
		}
		if err := store.Save(key); err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, "API key stored securely.")
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored key masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, store, err := newKeyStore(cmd)
		if err != nil {
			return err
		}
		key, err := store.Load()
		if err != nil {
			if errors.Is(err, credential.ErrNotFound) {
				fmt.Fprintf(a.stdout, "No API key stored at %s\n", store.Path())
				return nil
			}
			return err
		}
		fmt.Fprintf(a.stdout, "%s (%s)\n", credential.Mask(key), store.Path())
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, store, err := newKeyStore(cmd)
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Removed %s\n", store.Path())
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
	rootCmd.AddCommand(keyCmd)
}

func newKeyStore(cmd *cobra.Command) (*app, *credential.Store, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	return a, credential.NewStore(a.cfg.Credential.KeyFile, a.logger), nil
}
