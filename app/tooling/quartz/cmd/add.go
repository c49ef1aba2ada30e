package cmd

import (
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
)

var data string

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Mine a block carrying data and append it to the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, sync := evHandler()
		defer sync()

		strg, err := backend.Open(storageKind, dbPath)
		if err != nil {
			return err
		}
		defer strg.Close()

		c, err := loadChain(strg, ev)
		if err != nil {
			return err
		}

		if err := c.Validate(); err != nil {
			return fmt.Errorf("chain at %s is invalid, run verify: %w", dbPath, err)
		}

		ctx, cancel := miningContext(cmd.Context())
		defer cancel()

		b, err := c.MineNext(ctx, data)
		if err != nil {
			return fmt.Errorf("mining: %w", err)
		}

		if err := c.TryAddBlock(b); err != nil {
			return err
		}

		if err := strg.Write(storage.NewBlockData(b)); err != nil {
			return fmt.Errorf("writing block %d: %w", b.Payload.ID, err)
		}

		printBlock(b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&data, "data", "d", "", "Data to carry in the block.")
	addCmd.MarkFlagRequired("data")
}
