package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	configx "github.com/spinlab/coach/pkg/config"
	logx "github.com/spinlab/coach/pkg/logger"
	_ "github.com/spinlab/coach/pkg/logger/autoload"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Sales coaching assistant",
	Long:  `coach answers sales-training questions by calling data tools on behalf of the signed-in employee.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configx.SetEnvFile(envFile)
		logCfg, err := configx.New[logx.Config]("LOG")
		if err != nil {
			return err
		}
		logx.Init(*logCfg)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default ./.env when present)")
	rootCmd.AddCommand(newServeCmd(), newAskCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
