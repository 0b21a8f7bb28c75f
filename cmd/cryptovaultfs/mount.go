package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"net/http"

	"github.com/cryptovaultfs/cryptovaultfs/internal/asyncvault"
	"github.com/cryptovaultfs/cryptovaultfs/internal/cfg"
	"github.com/cryptovaultfs/cryptovaultfs/internal/fuseadapter"
	"github.com/cryptovaultfs/cryptovaultfs/internal/lockmgr"
	"github.com/cryptovaultfs/cryptovaultfs/internal/logger"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultconfig"
	"github.com/cryptovaultfs/cryptovaultfs/internal/vaultops"
)

// runMount unwraps the vault's master key, opens the synchronous and async
// vault layers, wires the FUSE adapter over them, and serves until the
// mount point is unmounted or the process is signaled.
func runMount(ctx context.Context, vaultPath, mountPoint string, c *cfg.Config) error {
	logger.Init(logger.Config{
		Severity:   logger.ParseSeverity(c.Logging.Severity),
		JSON:       c.Logging.JSON,
		FilePath:   c.Logging.FilePath,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
	})

	password := []byte(os.Getenv(c.Vault.PasswordEnv))
	if len(password) == 0 {
		return fmt.Errorf("mount: environment variable %s is unset or empty", c.Vault.PasswordEnv)
	}

	key, err := vaultconfig.UnwrapMasterKey(filepath.Join(vaultPath, vaultconfig.MasterKeyFileName), password)
	if err != nil {
		return fmt.Errorf("mount: unwrapping master key: %w", err)
	}
	defer key.Destroy()

	vaultCfg, err := vaultconfig.LoadVaultConfig(filepath.Join(vaultPath, vaultconfig.VaultConfigFileName), key)
	if err != nil {
		return fmt.Errorf("mount: loading vault config: %w", err)
	}

	threshold := c.Vault.ShorteningThreshold
	if threshold <= 0 {
		threshold = vaultCfg.ShorteningThreshold
	}

	locks := lockmgr.New()
	syncVault := vaultops.Open(vaultPath, key, vaultCfg.CipherCombo, threshold, locks)
	if err := syncVault.EnsureRoot(); err != nil {
		return fmt.Errorf("mount: preparing vault root: %w", err)
	}

	var registerer prometheus.Registerer
	if c.Metrics.Enabled {
		registerer = prometheus.DefaultRegisterer
		go serveMetrics(c.Metrics.Addr)
	}
	asyncV := asyncvault.New(syncVault, registerer)

	fsCfg := fuseadapter.Config{
		Workers:         c.Executor.Workers,
		QueueCapacity:   c.Executor.QueueCapacity,
		Policy:          parsePolicy(c.Executor.Policy),
		MetadataTimeout: c.Executor.MetadataTimeout,
		DefaultUID:      c.Vault.UID,
		DefaultGID:      c.Vault.GID,
		DefaultFileMode: c.Vault.FileMode,
		DefaultDirMode:  c.Vault.DirMode,
	}
	fs := fuseadapter.New(asyncV, fsCfg)
	defer fs.Close()

	server, err := fuse.NewServer(fs, mountPoint, &fuse.MountOptions{
		FsName: "cryptovaultfs",
		Name:   "cryptovaultfs",
	})
	if err != nil {
		return fmt.Errorf("mount: mounting at %s: %w", mountPoint, err)
	}

	logger.Infof("mounted %s at %s", vaultPath, mountPoint)
	go func() {
		<-ctx.Done()
		_ = server.Unmount()
	}()
	server.Serve()
	return nil
}

func parsePolicy(name string) fuseadapter.SaturationPolicy {
	switch name {
	case "reject":
		return fuseadapter.Reject
	case "spill":
		return fuseadapter.SpillToCaller
	default:
		return fuseadapter.Block
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("metrics server: %v", err)
	}
}
