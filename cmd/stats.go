/*
Copyright 2026 Nick Hamby

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhamby/spata/internal/store"
)

var statsYears []string
var statsMonths []string
var statsSeasons []string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the top artists and songs",
	Long: `Prints total listening time and the top 20 artists and songs,
optionally filtered by years, months (01-12), or seasons (spring,
summer, fall, winter). Seasons take precedence over months.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := printStats(viper.GetString("database")); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringSliceVar(&statsYears, "years", nil, "Filter by years, e.g. 2023,2024")
	statsCmd.Flags().StringSliceVar(&statsMonths, "months", nil, "Filter by months, e.g. 01,02")
	statsCmd.Flags().StringSliceVar(&statsSeasons, "seasons", nil, "Filter by seasons, e.g. summer")
}

func printStats(dbPath string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	stats, err := db.GetStats(statsYears, statsMonths, statsSeasons)
	if err != nil {
		return err
	}

	fmt.Printf("Total listening time: %s\n\n", formatMs(stats.TotalMsPlayed))

	artistRows := make([][]string, 0, len(stats.TopArtists))
	for i, a := range stats.TopArtists {
		artistRows = append(artistRows, []string{
			strconv.Itoa(i + 1), a.ArtistName, formatMs(a.DurationMs),
		})
	}
	fmt.Println("Top artists:")
	fmt.Println(renderTable([]string{"#", "Artist", "Time"}, artistRows))

	songRows := make([][]string, 0, len(stats.TopSongs))
	for i, song := range stats.TopSongs {
		songRows = append(songRows, []string{
			strconv.Itoa(i + 1), song.TrackName, song.ArtistName, formatMs(song.DurationMs),
		})
	}
	fmt.Println("Top songs:")
	fmt.Println(renderTable([]string{"#", "Track", "Artist", "Time"}, songRows))

	return nil
}
