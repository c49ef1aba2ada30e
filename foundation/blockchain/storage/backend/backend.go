// Package backend opens a storage implementation by name.
package backend

import (
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/disk"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/kv"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/memory"
)

// Set of storage kinds that can be opened.
const (
	Memory = "memory"
	Disk   = "disk"
	KV     = "kv"
)

// Open constructs the storage of the specified kind. The path is ignored
// for memory storage. An empty path with kv storage keeps the badger
// database in memory.
func Open(kind string, dbPath string) (storage.Storage, error) {
	switch kind {
	case Memory:
		return memory.New(), nil

	case Disk:
		d, err := disk.New(dbPath)
		if err != nil {
			return nil, err
		}
		return d, nil

	case KV:
		if dbPath == "" {
			db, err := kv.NewInMemory()
			if err != nil {
				return nil, err
			}
			return db, nil
		}

		db, err := kv.New(dbPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	return nil, fmt.Errorf("unknown storage kind %q", kind)
}
