// Package blocksource declares the external Fuel node collaborator as an
// interface boundary only (spec.md §1 "Out of scope: the Fuel node
// itself (consumed through a BlockSource trait)"). The one concrete
// adapter, NewFuelNodeSource in fuelnode.go, is what cmd/publisher wires
// at startup.
package blocksource

import (
	"context"

	"github.com/fuel-streams/streams/internal/domain"
)

// SealedBlock is one block as reported by the node, before C4 enriches it
// with per-transaction receipts/status into a domain.MsgPayload.
type SealedBlock struct {
	Height   uint64
	ID       string
	Producer string
	TxIDs    []string
}

// Source is the node driver C4 depends on (spec.md §4.4 "Startup
// sequence"). A production implementation wraps the Fuel GraphQL/gRPC
// client; tests substitute a fake.
type Source interface {
	// WaitSynced blocks until the node reports it has synced at least
	// once.
	WaitSynced(ctx context.Context) error

	// LatestHeight returns the node's current tip.
	LatestHeight(ctx context.Context) (uint64, error)

	// FetchBlock retrieves one sealed block and enough per-transaction
	// detail (receipts, status) to build a domain.MsgPayload.
	FetchBlock(ctx context.Context, height uint64) (domain.MsgPayload, error)

	// Subscribe opens the node's live block-import channel; each sealed
	// block is sent as it's produced. The channel closes when ctx is
	// cancelled or the node connection drops.
	Subscribe(ctx context.Context) (<-chan SealedBlock, error)

	// ChainMetadata returns the static chain-id/base-asset-id pair used to
	// build every block's Metadata.
	ChainMetadata(ctx context.Context) (chainID string, baseAssetID string, err error)
}
