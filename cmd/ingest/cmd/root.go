package cmd

import (
	"os"

	"github.com/punchamoorthee/momoledger/internal/logger"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Extract mobile-money transactions from an SMS backup",
	Long:  ``,
}

var (
	logLevel string
	log      = logger.New("development", "info")
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		log = log.Level(logger.ParseLevel(logLevel))
	}

	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP(parseCmdIn, "i", "modified_sms_v2.xml", "SMS backup XML file")
	parseCmd.Flags().StringP(parseCmdOut, "o", "data/transactions.json", "transaction file to write")
	parseCmd.Flags().StringP(parseCmdTimezone, "z", "", "IANA timezone for iso_date (default $TIMEZONE, then local)")
	parseCmd.Flags().Bool(parseCmdDedupe, false, "drop later records whose id was already extracted")
}
