package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhamby/spata/internal/store"
)

var trendsTrack string
var trendsGranularity string
var trendsStart string
var trendsEnd string

var trendsCmd = &cobra.Command{
	Use:   "trends [artist]",
	Short: "Prints listening trends for an artist or track",
	Long: `Buckets an artist's play history into day, week, month, or year
periods. Use --track to narrow to a single track by that artist.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := printTrends(viper.GetString("database"), args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(trendsCmd)

	trendsCmd.Flags().StringVar(&trendsTrack, "track", "", "Narrow to one track by the artist")
	trendsCmd.Flags().StringVar(&trendsGranularity, "granularity", "month", "Bucket size: day, week, month, or year")
	trendsCmd.Flags().StringVar(&trendsStart, "start", "", "Earliest date to include (YYYY-MM-DD)")
	trendsCmd.Flags().StringVar(&trendsEnd, "end", "", "Latest date to include (YYYY-MM-DD)")
}

func printTrends(dbPath string, artist string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	series, err := db.GetTrends(artist, trendsTrack, trendsGranularity, trendsStart, trendsEnd)
	if err != nil {
		return err
	}

	if len(series.Data) == 0 {
		fmt.Printf("No plays found for %q\n", artist)
		return nil
	}

	rows := make([][]string, 0, len(series.Data))
	for _, point := range series.Data {
		rows = append(rows, []string{
			point.Period,
			strconv.FormatInt(point.PlayCount, 10),
			formatMs(point.TotalMs),
		})
	}
	fmt.Println(renderTable([]string{"Period", "Plays", "Time"}, rows))
	return nil
}
