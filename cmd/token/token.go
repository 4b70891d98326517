package token

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ulrichard/uttesla/cmd/root"
	"github.com/ulrichard/uttesla/credentials"
)

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored Owner API tokens",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an access and/or refresh token",
	Long: `Write the given tokens to the data directory. A refresh token takes
precedence over an access token on the next login.`,
	Example: `  # Store a refresh token obtained elsewhere
  uttesla token set --refresh-token eyJhbGciOi...

  # Read it from the environment instead of the command line
  UTTESLA_REFRESH_TOKEN=eyJhbGciOi... uttesla token set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		accessToken, refreshToken := tokens()
		if accessToken == "" && refreshToken == "" {
			return fmt.Errorf("at least one of --access-token and --refresh-token is required")
		}
		return storeTokens(root.GetStore(), accessToken, refreshToken)
	},
}

// tokens returns the trimmed tokens from the flags or from
// UTTESLA_ACCESS_TOKEN and UTTESLA_REFRESH_TOKEN.
func tokens() (accessToken, refreshToken string) {
	return strings.TrimSpace(viper.GetString("access_token")), strings.TrimSpace(viper.GetString("refresh_token"))
}

func storeTokens(store *credentials.Store, accessToken, refreshToken string) error {
	if err := store.EnsureDir(); err != nil {
		return err
	}
	if accessToken != "" {
		if err := store.WriteAccessToken(accessToken); err != nil {
			return err
		}
		fmt.Printf("✅ Access token written to %s\n", store.AccessTokenPath())
	}
	if refreshToken != "" {
		if err := store.WriteRefreshToken(refreshToken); err != nil {
			return err
		}
		fmt.Printf("✅ Refresh token written to %s\n", store.RefreshTokenPath())
	}
	return nil
}

var tokenStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which tokens are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := root.GetStore()

		_, hasRefresh, err := store.ReadRefreshToken()
		if err != nil {
			return err
		}
		_, hasAccess, err := store.ReadAccessToken()
		if err != nil {
			return err
		}

		fmt.Printf("Data directory: %s\n", store.Dir())
		fmt.Printf("  Access token:  %s\n", present(hasAccess))
		fmt.Printf("  Refresh token: %s\n", present(hasRefresh))
		if !hasAccess && !hasRefresh {
			fmt.Println("No credentials stored, use \"uttesla token set\".")
		}
		return nil
	},
}

func present(ok bool) string {
	if ok {
		return "✅ stored"
	}
	return "❌ missing"
}

func init() {
	tokenSetCmd.Flags().String("access-token", "", "Owner API access token")
	tokenSetCmd.Flags().String("refresh-token", "", "Owner API refresh token")
	_ = viper.BindPFlag("access_token", tokenSetCmd.Flags().Lookup("access-token"))
	_ = viper.BindPFlag("refresh_token", tokenSetCmd.Flags().Lookup("refresh-token"))

	TokenCmd.AddCommand(tokenSetCmd)
	TokenCmd.AddCommand(tokenStatusCmd)

	root.RootCmd.AddCommand(TokenCmd)
}
