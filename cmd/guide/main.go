package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "guide",
	Short: "Gentle Separation Guide co-parenting coordination service",
	Long:  "Gentle Separation Guide is a service that helps separated parents coordinate: a shared parenting plan with holiday arrangements, side-by-side financial agreements, co-parent invitations, and a supportive chat assistant, with live updates between both parents' sessions.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/guide.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
