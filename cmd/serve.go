package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nhamby/spata/internal/store"
	"github.com/nhamby/spata/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analytics API for the dashboard",
	Long:  `Starts the HTTP API the browser dashboard queries. Run load first.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	var addr string
	serveCmd.Flags().StringVar(&addr, "addr", web.DefaultAddr, "Address to listen on")
	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))

	var requestsPerSecond float64
	serveCmd.Flags().Float64Var(&requestsPerSecond, "requests-per-second", 50,
		"Throttle for the whole API, 0 to disable")
	viper.BindPFlag("requests-per-second", serveCmd.Flags().Lookup("requests-per-second"))
}

func serve() error {
	db, err := store.New(viper.GetString("database"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	server := web.NewServer(web.ServerConfig{
		Addr:              viper.GetString("addr"),
		Store:             db,
		Log:               log.Logger,
		RequestsPerSecond: viper.GetFloat64("requests-per-second"),
	})
	return server.Run()
}
