package cmd

import (
	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every block in the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		strg, err := backend.Open(storageKind, dbPath)
		if err != nil {
			return err
		}
		defer strg.Close()

		c, err := loadChain(strg, nil)
		if err != nil {
			return err
		}

		for _, b := range c.Blocks() {
			printBlock(b)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
