package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhamby/spata/internal/store"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Searches artists and tracks by name",
	Long:  `Case-insensitive substring search over artist and track names.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := printSearch(viper.GetString("database"), args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func printSearch(dbPath string, query string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	results, err := db.Search(query)
	if err != nil {
		return err
	}

	if len(results.Artists) == 0 && len(results.Tracks) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return nil
	}

	if len(results.Artists) > 0 {
		rows := make([][]string, 0, len(results.Artists))
		for _, a := range results.Artists {
			rows = append(rows, []string{a.Name, strconv.FormatInt(a.PlayCount, 10)})
		}
		fmt.Println("Artists:")
		fmt.Println(renderTable([]string{"Artist", "Plays"}, rows))
	}

	if len(results.Tracks) > 0 {
		rows := make([][]string, 0, len(results.Tracks))
		for _, track := range results.Tracks {
			rows = append(rows, []string{track.TrackName, track.ArtistName, strconv.FormatInt(track.PlayCount, 10)})
		}
		fmt.Println("Tracks:")
		fmt.Println(renderTable([]string{"Track", "Artist", "Plays"}, rows))
	}

	return nil
}
