package cmd

import (
	"fmt"

	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate every block in the chain",
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
			return fmt.Errorf("chain at %s is invalid: %w", dbPath, err)
		}

		fmt.Printf("chain at %s is valid: %d blocks, tip %s\n", dbPath, c.Len(), c.Tip().Digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
