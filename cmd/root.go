// Package cmd holds the CLI commands of the emulator.
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	debug   bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vip8 [command]",
	Short: "Chip-8 virtual machine",
	Long: "A virtual machine for the Chip-8, the interpreted language hosted on the " +
		"COSMAC VIP and Telmac 1800. Runs ROM images of up to 3584 bytes on a " +
		"64x32 display with a 16 key hex keypad and 60Hz delay/sound timers.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vip8.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "log errors only")

	viper.SetDefault("clock", 700)
	viper.SetDefault("scale", 10)
	viper.SetDefault("tone", 440.0)
	viper.SetDefault("volume", 0.5)
	viper.SetDefault("mute", false)
	viper.SetDefault("seed", 0)
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newLogger builds the logger from the verbosity flags.
func newLogger() *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".vip8" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".vip8")
	}

	viper.SetEnvPrefix("vip8")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
