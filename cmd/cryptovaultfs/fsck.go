package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultconfig"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

var fsckCmd = &cobra.Command{
	Use:   "fsck vault_path",
	Short: "Scan a vault's raw storage tree and report every directory id backup found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving vault path: %w", err)
		}

		passwordEnv := "CRYPTOVAULTFS_PASSWORD"
		password := []byte(os.Getenv(passwordEnv))
		if len(password) == 0 {
			return fmt.Errorf("fsck: environment variable %s is unset or empty", passwordEnv)
		}

		key, err := vaultconfig.UnwrapMasterKey(filepath.Join(vaultPath, vaultconfig.MasterKeyFileName), password)
		if err != nil {
			return fmt.Errorf("fsck: unwrapping master key: %w", err)
		}
		defer key.Destroy()

		vaultCfg, err := vaultconfig.LoadVaultConfig(filepath.Join(vaultPath, vaultconfig.VaultConfigFileName), key)
		if err != nil {
			return fmt.Errorf("fsck: loading vault config: %w", err)
		}

		v := vaultops.Open(vaultPath, key, vaultCfg.CipherCombo, vaultCfg.ShorteningThreshold, lockmgr.New())

		recovered, err := v.RecoverDirectoryTree()
		if err != nil {
			return fmt.Errorf("fsck: walking storage tree: %w", err)
		}

		mismatches := 0
		for _, r := range recovered {
			if err := v.VerifyDirectoryID(r.DirID); err != nil {
				mismatches++
				fmt.Fprintf(cmd.OutOrStdout(), "MISMATCH %s: backup disagrees with storage path (%v)\n", r.StoragePath, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok       %s: %s\n", r.StoragePath, r.DirID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d directories scanned, %d mismatches\n", len(recovered), mismatches)
		if mismatches > 0 {
			return fmt.Errorf("fsck: %d directory id mismatches found", mismatches)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}
