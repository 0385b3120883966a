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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhamby/spata/internal/ingest"
	"github.com/nhamby/spata/internal/store"
)

type LoadConfig struct {
	DbPath      string
	DataDir     string
	MinMsPlayed int64
}

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Loads a streaming history export into the database",
	Long: `Reads every Streaming_History_Audio_*.json file in the data
directory, classifies the events into tracks, podcast episodes, and
audiobook chapters, filters out noise plays, and replaces the whole
dataset in the SQLite database.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := LoadConfig{
			DbPath:      viper.GetString("database"),
			DataDir:     viper.GetString("data-dir"),
			MinMsPlayed: viper.GetInt64("min-ms-played"),
		}

		if err := loadDatabase(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	var dataDir string
	loadCmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory containing the Spotify export")
	loadCmd.MarkFlagRequired("data-dir")
	viper.BindPFlag("data-dir", loadCmd.Flags().Lookup("data-dir"))

	var minMsPlayed int64
	loadCmd.Flags().Int64Var(&minMsPlayed, "min-ms-played", ingest.DefaultMinMsPlayed,
		"Discard events played for fewer milliseconds than this")
	viper.BindPFlag("min-ms-played", loadCmd.Flags().Lookup("min-ms-played"))
}

func loadDatabase(config LoadConfig) error {
	events, summary, err := ingest.ReadDir(config.DataDir, config.MinMsPlayed)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.ReplaceAll(events); err != nil {
		return fmt.Errorf("loading database: %w", err)
	}

	log.Info().
		Int("files", summary.Files).
		Int("kept", summary.Kept).
		Int("skipped_malformed", summary.SkippedMalformed).
		Int("skipped_unclassified", summary.SkippedUnclassified).
		Int("filtered_noise", summary.FilteredNoise).
		Msg("Load complete")
	return nil
}
