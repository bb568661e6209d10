package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bookshelf/cmd/cli/command/client"
	"bookshelf/internal/http-api/dto"
	"bookshelf/internal/http-api/models"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book commands",
	Long:  `List, show, create, update and delete books.`,
}

var listBooksCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := client.NewHTTPClient(apiURL).ListBooks(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
		printBooks(cmd.OutOrStdout(), books)
		return nil
	},
}

var bestBooksCmd = &cobra.Command{
	Use:   "best",
	Short: "Show the three best rated books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := client.NewHTTPClient(apiURL).BestRated(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get best rated books: %w", err)
		}
		printBooks(cmd.OutOrStdout(), books)
		return nil
	},
}

var getBookCmd = &cobra.Command{
	Use:   "get [book-id]",
	Short: "Show one book with its ratings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := client.NewHTTPClient(apiURL).GetBook(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get book: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", book.Title)
		fmt.Fprintf(out, "Author:  %s\n", book.Author)
		fmt.Fprintf(out, "Year:    %d\n", book.Year)
		fmt.Fprintf(out, "Genre:   %s\n", book.Genre)
		fmt.Fprintf(out, "Rating:  %.1f (%d ratings)\n", book.AverageRating, len(book.Ratings))
		fmt.Fprintf(out, "Image:   %s\n", book.ImageURL)
		fmt.Fprintf(out, "Owner:   %s\n", book.UserID)
		return nil
	},
}

var createBookCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a book with its cover image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.BookRequest
		req.Title, _ = cmd.Flags().GetString("title")
		req.Author, _ = cmd.Flags().GetString("author")
		req.Year, _ = cmd.Flags().GetInt("year")
		req.Genre, _ = cmd.Flags().GetString("genre")
		image, _ := cmd.Flags().GetString("image")

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		res, err := c.CreateBook(cmd.Context(), &req, image)
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓", res.Message)
		return nil
	},
}

var updateBookCmd = &cobra.Command{
	Use:   "update [book-id]",
	Short: "Change a book you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch dto.UpdateBookRequest
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			patch.Title = &v
		}
		if flags.Changed("author") {
			v, _ := flags.GetString("author")
			patch.Author = &v
		}
		if flags.Changed("year") {
			v, _ := flags.GetInt("year")
			patch.Year = &v
		}
		if flags.Changed("genre") {
			v, _ := flags.GetString("genre")
			patch.Genre = &v
		}
		image, _ := flags.GetString("image")

		if patch.IsEmpty() && image == "" {
			return fmt.Errorf("nothing to update, pass at least one of --title, --author, --year, --genre, --image")
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		res, err := c.UpdateBook(cmd.Context(), args[0], &patch, image)
		if err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓", res.Message)
		return nil
	},
}

var deleteBookCmd = &cobra.Command{
	Use:   "delete [book-id]",
	Short: "Delete a book you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		res, err := c.DeleteBook(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓", res.Message)
		return nil
	},
}

func printBooks(w io.Writer, books []models.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tRATING")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\n", b.ID, b.Title, b.Author, b.Year, b.AverageRating)
	}
	tw.Flush()
}

func init() {
	bookCmd.AddCommand(listBooksCmd)
	bookCmd.AddCommand(bestBooksCmd)
	bookCmd.AddCommand(getBookCmd)
	bookCmd.AddCommand(createBookCmd)
	bookCmd.AddCommand(updateBookCmd)
	bookCmd.AddCommand(deleteBookCmd)

	for _, c := range []*cobra.Command{createBookCmd, updateBookCmd} {
		c.Flags().StringP("title", "t", "", "Book title")
		c.Flags().StringP("author", "a", "", "Book author")
		c.Flags().IntP("year", "y", 0, "Publication year")
		c.Flags().StringP("genre", "g", "", "Book genre")
		c.Flags().StringP("image", "i", "", "Path to the cover image")
	}
	for _, name := range []string{"title", "author", "year", "genre", "image"} {
		_ = createBookCmd.MarkFlagRequired(name)
	}
}

