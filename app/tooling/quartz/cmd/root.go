// Package cmd contains the quartz admin commands.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/quartzledger/quartz/foundation/blockchain/block"
	"github.com/quartzledger/quartz/foundation/blockchain/chain"
	"github.com/quartzledger/quartz/foundation/blockchain/storage"
	"github.com/quartzledger/quartz/foundation/blockchain/storage/backend"
	"github.com/quartzledger/quartz/foundation/logger"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	storageKind string
	maxAttempts uint64
	timeout     time.Duration
	verbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db-path", "p", "zblock/blocks", "Path to the stored chain.")
	rootCmd.PersistentFlags().StringVarP(&storageKind, "storage", "s", backend.Disk, "Storage kind, disk or kv.")
	rootCmd.PersistentFlags().Uint64VarP(&maxAttempts, "max-attempts", "m", 0, "Nonces to try before giving up, zero is unbounded.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Time allowed for mining, zero is unbounded.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log mining and validation events.")
}

var rootCmd = &cobra.Command{
	Use:           "quartz",
	Short:         "Manage a stored quartz chain",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command named on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// =============================================================================

// evHandler returns the event handler for the chain packages. Events are
// only logged when verbose is set.
func evHandler() (block.EventHandler, func()) {
	if !verbose {
		return nil, func() {}
	}

	log, err := logger.New("QUARTZ")
	if err != nil {
		return nil, func() {}
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	return ev, func() { log.Sync() }
}

// loadChain reads every block in the storage and builds a chain over them.
func loadChain(strg storage.Storage, ev block.EventHandler) (*chain.Chain, error) {
	blocks, err := storage.ReadAll(strg)
	if err != nil {
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	c, err := chain.FromBlocks(blocks, chain.Config{MaxAttempts: maxAttempts, EvHandler: ev})
	if err != nil {
		return nil, fmt.Errorf("building chain from %s: %w", dbPath, err)
	}

	return c, nil
}

func printBlock(b block.Block) {
	fmt.Printf("Block %d\n", b.Payload.ID)
	fmt.Printf("  digest:    %s\n", b.Digest)
	fmt.Printf("  nonce:     %d\n", b.Nonce)
	fmt.Printf("  data:      %q\n", b.Payload.Data)
	fmt.Printf("  timestamp: %s\n", time.Unix(b.Payload.Timestamp, 0).UTC().Format(time.RFC3339))
	fmt.Printf("  previous:  %s\n", b.Payload.PrevDigest)
}
