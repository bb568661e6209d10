package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookshelf/cmd/cli/authentication"
	"bookshelf/cmd/cli/command/client"
	"bookshelf/internal/http-api/dto"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Create an account, log in and log out. The token is kept in the OS keyring.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SignupRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		res, err := client.NewHTTPClient(apiURL).Signup(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Println("✓", res.Message, "Please login to continue.")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		res, err := client.NewHTTPClient(apiURL).Login(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := authentication.StoreToken(&authentication.StoredCredentials{
			Token:  res.Token,
			UserID: res.UserID,
			Email:  req.Email,
		}); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		fmt.Println("✓ Successfully logged in!")
		fmt.Printf("UserID: %s\n", res.UserID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteToken(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)

	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringP("email", "e", "", "Account email")
		c.Flags().StringP("password", "p", "", "Account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
}
