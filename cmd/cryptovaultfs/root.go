package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryptovaultfs/cryptovaultfs/internal/cfg"
)

var (
	cfgFile       string
	bindErr       error
	mountedConfig cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "cryptovaultfs [flags] vault_path mount_point",
	Short: "Mount a Cryptomator-format vault as a local FUSE filesystem",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if err := viper.Unmarshal(&mountedConfig); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		if err := cfg.Validate(&mountedConfig); err != nil {
			return err
		}

		vaultPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving vault path: %w", err)
		}
		mountPoint, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("resolving mount point: %w", err)
		}

		return runMount(cmd.Context(), vaultPath, mountPoint, &mountedConfig)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		bindErr = fmt.Errorf("reading config file: %w", err)
	}
}
