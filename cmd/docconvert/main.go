// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docconvert CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docconvert CLI.
var rootCmd = &cobra.Command{
	Use:   "docconvert",
	Short: "Convert documents between PDF and DOCX",
	Long: `docconvert converts PDF documents to editable DOCX files. Each PDF is
triaged first: digital documents go straight to the structural converter,
scanned documents are rasterized, straightened and OCR'd into a searchable
PDF before conversion.

It also converts DOCX back to PDF through LibreOffice and keeps a history of
every conversion.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docconvert.yaml or ~/.config/docconvert/docconvert.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug details to stderr")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON instead of text")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docconvert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docconvert"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("DOCCONVERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
