package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"jobalert/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func newSecretsCmd(s streams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage mail credentials in the OS keychain",
	}

	var fromStdin bool
	set := &cobra.Command{
		Use:       "set <sendgrid|smtp|imap>",
		Short:     "Store a credential for the configured account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(secrets.SendGrid), string(secrets.SMTP), string(secrets.IMAP)},
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := secretAccount(cmd, args[0])
			if err != nil {
				return err
			}
			value, err := readSecret(s, account, fromStdin)
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			if err := secrets.Set(account, value); err != nil {
				return &exitError{code: 1, err: fmt.Errorf("storing %s: %w", account, err)}
			}
			fmt.Fprintf(s.out, "Stored %s\n", account)
			return nil
		},
	}
	set.Flags().BoolVar(&fromStdin, "stdin", false, "read the secret from stdin instead of prompting")

	del := &cobra.Command{
		Use:   "delete <sendgrid|smtp|imap>",
		Short: "Remove a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := secretAccount(cmd, args[0])
			if err != nil {
				return err
			}
			if err := secrets.Delete(account); err != nil {
				return &exitError{code: 1, err: fmt.Errorf("deleting %s: %w", account, err)}
			}
			fmt.Fprintf(s.out, "Deleted %s\n", account)
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

func secretAccount(cmd *cobra.Command, arg string) (string, error) {
	kind, err := secrets.ParseKind(arg)
	if err != nil {
		return "", &exitError{code: 1, err: err}
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", &exitError{code: 1, err: err}
	}
	account, err := secrets.Account(kind, cfg.Email)
	if err != nil {
		return "", &exitError{code: 1, err: err}
	}
	return account, nil
}

func readSecret(s streams, account string, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	prompt := promptui.Prompt{
		Label:  "Secret for " + account,
		Mask:   '*',
		Stdin:  io.NopCloser(s.in),
		Stdout: nopWriteCloser{s.out},
	}
	v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("secret prompt: %w", err)
	}
	return strings.TrimSpace(v), nil
}
