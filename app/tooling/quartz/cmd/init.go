package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/chain"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Mine a genesis block into empty storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, sync := evHandler()
		defer sync()

		strg, err := backend.Open(storageKind, dbPath)
		if err != nil {
			return err
		}
		defer strg.Close()

		if _, err := strg.GetBlock(0); !errors.Is(err, storage.ErrNotFound) {
			if err != nil {
				return err
			}
			return fmt.Errorf("a chain already exists at %s", dbPath)
		}

		ctx, cancel := miningContext(cmd.Context())
		defer cancel()

		c, err := chain.New(ctx, chain.Config{MaxAttempts: maxAttempts, EvHandler: ev})
		if err != nil {
			return err
		}

		if err := strg.Write(storage.NewBlockData(c.Genesis())); err != nil {
			return fmt.Errorf("writing genesis: %w", err)
		}

		printBlock(c.Genesis())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// miningContext applies the timeout flag to the parent context.
func miningContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
