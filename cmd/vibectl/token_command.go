package main

import (
	"fmt"
	"time"

	"moodmate/internal/config"
	"moodmate/internal/middleware"

	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var (
		user     string
		ttl      time.Duration
		secret   string
		issuer   string
		audience string
	)

	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Sign a development bearer token for a user",
		Long:        "Sign a token with the server's JWT settings. Secret, issuer and audience default to the server configuration (config.yml, .env and environment).",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("user", user)
			if err != nil {
				return err
			}
			if secret == "" {
				cfg, err := config.LoadConfig()
				if err != nil {
					return fmt.Errorf("load server config: %w", err)
				}
				if cfg.IsProduction() {
					return fmt.Errorf("refusing to sign tokens with a production secret")
				}
				secret = cfg.JWTSecret
				if !cmd.Flags().Changed("issuer") {
					issuer = cfg.JWTIssuer
				}
				if !cmd.Flags().Changed("audience") {
					audience = cfg.JWTAudience
				}
			}
			token, err := middleware.NewAuthenticator(secret, issuer, audience, nil).IssueToken(id, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "User id to put in the subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (defaults to the server config)")
	cmd.Flags().StringVar(&issuer, "issuer", "moodmate-auth", "Issuer claim")
	cmd.Flags().StringVar(&audience, "audience", "moodmate-client", "Audience claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
