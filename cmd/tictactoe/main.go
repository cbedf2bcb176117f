package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string

	rootCmd = &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe with a move history you can travel through",
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the game in the browser",
		Long:  `Starts the HTTP server. Every browser session gets its own game; open tabs of a session stay in sync over a websocket.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
