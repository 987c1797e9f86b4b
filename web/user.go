package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/devilmonastery/projectboard/internal/pkg/logger"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Commands for managing board accounts",
	}

	cmd.AddCommand(newUserCreateCommand(opts))

	return cmd
}

func newUserCreateCommand(opts *rootOptions) *cobra.Command {
	var userID, email, nickname, memo, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Long:  "Create a local account. The password is prompted for when --password is not given.",
		Example: `  # Create a user, prompting for the password
  board user create --id uno --email uno@mail.com --nickname Uno

  # Non-interactive
  board user create --id dos --password secret123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			a, err := openApp(cmd.Context(), opts.cfg, logger.WithCommand(slog.Default(), "user create"))
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.users.SaveUser(cmd.Context(), userID, password, email, nickname, memo)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			slog.Info("User created successfully",
				"user_id", user.UserID,
				"email", user.Email,
				"nickname", user.Nickname,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", user.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "id", "", "User ID used to log in (required)")
	cmd.Flags().StringVar(&email, "email", "", "User email (optional)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name (optional)")
	cmd.Flags().StringVar(&memo, "memo", "", "Free-form memo (optional)")
	cmd.Flags().StringVar(&password, "password", "", "User password (prompted when omitted)")

	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// readPassword prompts twice without echo when in is a terminal, and reads
// one line otherwise so the command can be scripted.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprint(prompt, "Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}
