package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/franz/dive-gallery/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "dg",
		Short: "Dive Gallery - organize labeled dive photos into browsable trees",
		Long: `dg (Dive Gallery) reads a directory of dives whose image filenames carry
subject labels, and organizes them into a subject tree, a scientific
taxonomy tree and a sites tree. It reports subjects that are vague,
missing from the taxonomy, or only identified to genus.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.SetVerbose(viper.GetBool("verbose"))
			util.SetQuiet(viper.GetBool("quiet"))
			util.SetColors(!viper.GetBool("no-color") && util.IsTerminal(os.Stderr.Fd()))
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./configs/example.yaml)")
	rootCmd.PersistentFlags().StringP("images", "i", "", "image root containing one directory per dive")
	rootCmd.PersistentFlags().String("static", "", "naming and location rules YAML (default: built-in)")
	rootCmd.PersistentFlags().String("taxonomy", "", "taxonomy YAML (default: built-in)")
	rootCmd.PersistentFlags().String("db", "dg-ledger.db", "run ledger database file (empty disables)")
	rootCmd.PersistentFlags().String("metrics", "", "write metrics in Prometheus text format to this file")
	rootCmd.PersistentFlags().IntP("concurrency", "c", 4, "number of dive directories read in parallel")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored log output")

	// Bind flags to viper
	for _, name := range []string{"images", "static", "taxonomy", "db", "metrics", "concurrency", "verbose", "quiet", "no-color"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("example")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("DG")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
