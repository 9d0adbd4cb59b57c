package keyValStore

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

const bytesPerGB = 1024 * 1024 * 1024

// checkConfig makes sure the on-disk directory exists and has room. In-memory
// stores have nothing to check.
func (sc *StoreConfig) checkConfig() error {
	if sc.InMemory {
		return nil
	}
	if len(sc.Paths) == 0 {
		return errors.New("no path provided in configuration")
	}

	path := sc.Paths[0]
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cache directory %s can not be created: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cache directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache path %s is not a directory", path)
	}

	free, err := freeGB(path)
	if err != nil {
		return err
	}
	if sc.MinimumFreeSpace > 0 && free < uint64(sc.MinimumFreeSpace) {
		return fmt.Errorf("cache directory %s has %d GB free, need %d", path, free, sc.MinimumFreeSpace)
	}
	return nil
}

func freeGB(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("error reading free space of %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize) / bytesPerGB, nil
}
