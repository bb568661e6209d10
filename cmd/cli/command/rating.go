package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ratingCmd = &cobra.Command{
	Use:   "rating",
	Short: "Rating commands",
	Long:  `Rate books. Each user can rate a book once, with a grade from 0 to 5.`,
}

var rateCmd = &cobra.Command{
	Use:   "rate [book-id] [grade]",
	Short: "Rate a book (0-5)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid grade: %w", err)
		}
		if grade < 0 || grade > 5 {
			return fmt.Errorf("grade must be between 0 and 5")
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		book, err := c.RateBook(cmd.Context(), args[0], grade)
		if err != nil {
			return fmt.Errorf("failed to rate book: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✓ Rating submitted successfully!")
		fmt.Fprintf(out, "Book: %s\n", book.Title)
		fmt.Fprintf(out, "Your grade: %d/5\n", grade)
		fmt.Fprintf(out, "Average: %.1f (%d ratings)\n", book.AverageRating, len(book.Ratings))
		return nil
	},
}

func init() {
	ratingCmd.AddCommand(rateCmd)
}
