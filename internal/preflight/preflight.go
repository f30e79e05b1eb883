// Package preflight verifies the environment before generation work starts:
// writable directories, free disk space, and a usable provider selection.
package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"pustakam/internal/book"
	"pustakam/internal/bookstore"
	"pustakam/internal/config"
	"pustakam/internal/provider"
	"pustakam/internal/services"
)

// Check is one preflight result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// FreeSpace returns the free bytes on the filesystem containing path.
func FreeSpace(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}

// EnsureDiskSpace fails with the storage-full sentinel when the filesystem
// holding path has less than minMiB free.
func EnsureDiskSpace(path string, minMiB int64) error {
	if minMiB <= 0 {
		return nil
	}
	free, err := FreeSpace(path)
	if err != nil {
		return err
	}
	minBytes := minMiB << 20
	if free < minBytes {
		return services.Wrap(services.ErrStorageFull, "preflight", "disk",
			fmt.Sprintf("%d MiB free, %d MiB required", free>>20, minMiB), nil)
	}
	return nil
}

func checkWritable(name, dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	os.Remove(probe)
	return Check{Name: name, OK: true, Detail: dir}
}

// Run executes every preflight check and returns the results. A false OK on
// any check means generation is likely to fail; callers decide whether that
// is fatal.
func Run(ctx context.Context, cfg *config.Config, store *bookstore.Store) []Check {
	checks := []Check{
		checkWritable("data directory", cfg.Paths.DataDir),
		checkWritable("export directory", cfg.Paths.ExportDir),
	}

	if err := EnsureDiskSpace(cfg.Paths.DataDir, cfg.Storage.MinFreeMiB); err != nil {
		checks = append(checks, Check{Name: "free disk space", Detail: err.Error()})
	} else {
		free, _ := FreeSpace(cfg.Paths.DataDir)
		checks = append(checks, Check{Name: "free disk space", OK: true,
			Detail: fmt.Sprintf("%d MiB available", free>>20)})
	}

	checks = append(checks, checkProvider(ctx, cfg, store))
	return checks
}

func checkProvider(ctx context.Context, cfg *config.Config, store *bookstore.Store) Check {
	const name = "provider"
	settings := book.Settings{Provider: cfg.Providers.Default}
	if store != nil {
		if persisted, found, err := store.LoadSettings(ctx); err != nil {
			return Check{Name: name, Detail: err.Error()}
		} else if found {
			settings = persisted
		}
	}
	provider.NormalizeSettings(&settings)

	providerName, _ := provider.ParseName(settings.Provider)
	key := settings.Key(string(providerName))
	if key == "" {
		if section, ok := cfg.ProviderSettings(string(providerName)); ok {
			key = section.APIKey
		}
	}
	if key == "" {
		return Check{Name: name, Detail: fmt.Sprintf("no API key for %s", providerName)}
	}
	return Check{Name: name, OK: true,
		Detail: fmt.Sprintf("%s / %s", providerName, settings.Model)}
}

// Healthy reports whether every check passed.
func Healthy(checks []Check) bool {
	for _, check := range checks {
		if !check.OK {
			return false
		}
	}
	return true
}
