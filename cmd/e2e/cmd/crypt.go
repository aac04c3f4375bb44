package cmd

import (
	"errors"
	"fmt"

	"storefront-e2e/lib/cipher"

	"github.com/spf13/cobra"
)

var cryptKey string

func init() {
	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVarP(&cryptKey, "key", "k", "", "passphrase, defaults to encryption_key from the config")
		rootCmd.AddCommand(c)
	}
}

func passphrase() (string, error) {
	if cryptKey != "" {
		return cryptKey, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.EncryptionKey == "" {
		return "", errors.New("no passphrase: pass --key or set encryption_key / ENCRYPTION_KEY")
	}
	return cfg.EncryptionKey, nil
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <plaintext>",
	Short: "Encrypts a credential for use in the config or .env file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := passphrase()
		if err != nil {
			return err
		}
		out, err := cipher.Encrypt(args[0], key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <hex>",
	Short: "Decrypts a credential produced by encrypt.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := passphrase()
		if err != nil {
			return err
		}
		out, err := cipher.Decrypt(args[0], key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}
