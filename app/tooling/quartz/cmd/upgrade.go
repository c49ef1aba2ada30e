package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/chain"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
)

var (
	remotePath    string
	remoteStorage string
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Replace the chain with a longer valid chain from another store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, sync := evHandler()
		defer sync()

		if storageKind == backend.Memory {
			return errors.New("memory storage can't be upgraded in place")
		}

		lc, err := readChain(storageKind, dbPath, ev)
		if err != nil {
			return err
		}

		rc, err := readChain(remoteStorage, remotePath, ev)
		if err != nil {
			return err
		}

		// Neither store is touched when both chains are invalid.
		winner, err := chain.Upgrade(lc, rc)
		if err != nil {
			return err
		}

		if winner == lc {
			fmt.Printf("kept local chain: %d blocks\n", lc.Len())
			return nil
		}

		if err := replaceStore(storageKind, dbPath, winner.Blocks()); err != nil {
			return err
		}

		fmt.Printf("took remote chain: %d blocks\n", winner.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringVarP(&remotePath, "remote-path", "r", "", "Path to the other stored chain.")
	upgradeCmd.Flags().StringVar(&remoteStorage, "remote-storage", backend.Disk, "Storage kind of the other chain.")
	upgradeCmd.MarkFlagRequired("remote-path")
}

// readChain opens the store, reads its chain and closes it again.
func readChain(kind string, path string, ev block.EventHandler) (*chain.Chain, error) {
	strg, err := backend.Open(kind, path)
	if err != nil {
		return nil, err
	}
	defer strg.Close()

	return loadChain(strg, ev)
}

// replaceStore writes the blocks into a new store beside dbPath and only
// swaps it into place once every block is written. The existing store is
// left as it was when writing fails.
func replaceStore(kind string, dbPath string, blocks []block.Block) error {
	dbPath = filepath.Clean(dbPath)
	tmp := dbPath + ".upgrade"
	old := dbPath + ".old"

	if err := os.RemoveAll(tmp); err != nil {
		return err
	}

	strg, err := backend.Open(kind, tmp)
	if err != nil {
		return err
	}

	if err := storage.WriteAll(strg, blocks); err != nil {
		strg.Close()
		os.RemoveAll(tmp)
		return fmt.Errorf("writing new chain: %w", err)
	}

	if err := strg.Close(); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("closing new chain: %w", err)
	}

	if err := os.RemoveAll(old); err != nil {
		os.RemoveAll(tmp)
		return err
	}

	if err := os.Rename(dbPath, old); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("moving old chain aside: %w", err)
	}

	if err := os.Rename(tmp, dbPath); err != nil {
		os.Rename(old, dbPath)
		return fmt.Errorf("swapping in new chain: %w", err)
	}

	return os.RemoveAll(old)
}
