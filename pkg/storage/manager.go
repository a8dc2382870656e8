package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the configured disks. The local disk is always available;
// the s3 disk only when S3_BUCKET is set.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()
	disks["local"] = NewLocal(config.StorageLocalRoot(), config.StorageURL())

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(ctx)
		if err != nil {
			logger.Warn("storage/s3: disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Use returns the named disk, or the default disk for "".
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()
	if name == "" {
		name = defaultDisk
	}
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// RegisterDisk plugs in a Disk implementation under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// Names returns the configured disk names.
func Names() []string {
	managerMu.RLock()
	defer managerMu.RUnlock()
	out := make([]string, 0, len(disks))
	for n := range disks {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
