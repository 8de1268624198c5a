package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wpschema/wpschema/internal/web/auth"
)

// NewTokenCommand creates the token command
func NewTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		roles []string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <login>",
		Short: "Sign a bearer token for the REST routes",
		Example: `  wpschema token admin --role administrator
  curl -H "Authorization: Bearer $(wpschema token editor --role editor)" ...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			for _, r := range roles {
				if !auth.Can([]string{r}, auth.CapRead) {
					return fmt.Errorf("unknown role %q", r)
				}
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.NewTokenService(cfg.Auth.JWTSecret, ttl).GenerateToken(args[0], roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&roles, "role", "r", []string{"editor"}, "WordPress roles to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime (default from auth.token_ttl)")
	return cmd
}
