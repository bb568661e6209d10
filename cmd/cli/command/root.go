package command

// root.go defines the root command and the global flags.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookshelf/cmd/cli/authentication"
	"bookshelf/cmd/cli/command/client"
)

var apiURL string // Global flag for API server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "bookshelf - command line client for the bookshelf API",
	Long: `bookshelf talks to a bookshelf API server. Use it to:
- create an account and log in
- list, add, edit and remove books
- rate books and see the best rated ones

Use "bookshelf [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:4000", "API server URL")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(ratingCmd)
}

// authenticatedClient returns a client carrying the stored token.
func authenticatedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetToken()
	if err != nil {
		return nil, err
	}
	c := client.NewHTTPClient(apiURL)
	c.SetToken(creds.Token)
	return c, nil
}
