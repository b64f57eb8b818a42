package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pressbot/internal/config"
	"pressbot/internal/repository"
	"pressbot/internal/repository/db"
	"pressbot/internal/service"
)

func operatorCmd(cfgPath *string) *cobra.Command {
	c := &cobra.Command{
		Use:   "operator",
		Short: "Manage console operators",
	}
	c.AddCommand(operatorAddCmd(cfgPath))
	return c
}

func operatorAddCmd(cfgPath *string) *cobra.Command {
	var password string
	var passwordStdin bool

	c := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an operator allowed to sign in to the HTTP console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			if password == "" {
				return errors.New("password required: use --password or --password-stdin")
			}

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.DB.Path == "" {
				return errors.New("db.path is empty; operators need the journal database")
			}
			conn, err := db.InitDB(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer conn.Close()

			repos := repository.NewRepository(conn)
			auth := service.NewAuthService(repos.Operators, service.AuthConfig{
				SigningKey: cfg.HTTP.SigningKey,
				TokenTTL:   cfg.HTTP.TokenTTL,
			})
			id, err := auth.AddOperator(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("add operator %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "operator %q created (id %d)\n", args[0], id)
			return nil
		},
	}
	c.Flags().StringVarP(&password, "password", "p", "", "Operator password")
	c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from the first line of stdin")
	c.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return c
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
