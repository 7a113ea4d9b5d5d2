// Package domain holds the chain-facing value types (spec.md §3): the
// block/transaction/input/output/receipt/utxo/predicate/message records
// that make up one MsgPayload, and the packet/response shapes the pipeline
// moves them through.
package domain

import "time"

// Metadata carries the chain context needed to interpret one block's
// contents, built from (fuel_core, sealed_block) per spec.md §4.4 step 1.
type Metadata struct {
	ChainID     string    `json:"chain_id"`
	BaseAssetID string    `json:"base_asset_id"`
	Producer    string    `json:"producer"`
	Height      uint64    `json:"height"`
	Consensus   string    `json:"consensus"`
	Timestamp   time.Time `json:"timestamp"`
}

// Block is the sealed block header plus its transaction id list.
type Block struct {
	Height   uint64   `json:"height"`
	ID       string   `json:"id"`
	Producer string   `json:"producer"`
	TxIDs    []string `json:"tx_ids"`
}

// Input is a transaction input, tagged by Kind ("coin"|"contract"|"message").
type Input struct {
	Kind       string `json:"kind"`
	Owner      string `json:"owner,omitempty"`
	AssetID    string `json:"asset_id,omitempty"`
	ContractID string `json:"contract_id,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Recipient  string `json:"recipient,omitempty"`
	BlobID     string `json:"blob_id,omitempty"`
	Predicate  string `json:"predicate_address,omitempty"`
}

// Output is a transaction output, tagged by Kind ("coin"|"contract"|
// "change"|"variable"|"contract_created").
type Output struct {
	Kind         string `json:"kind"`
	To           string `json:"to,omitempty"`
	AssetID      string `json:"asset_id,omitempty"`
	ContractID   string `json:"contract_id,omitempty"`
	InputIndex   *int   `json:"input_index,omitempty"` // Output::Contract only
}

// Receipt is one execution receipt, tagged by Kind (one of the thirteen
// Fuel receipt variants: call, return, return_data, panic, revert, log,
// log_data, transfer, transfer_out, script_result, message_out, mint, burn).
type Receipt struct {
	Kind           string `json:"kind"`
	FromContractID string `json:"from_contract_id,omitempty"`
	ToContractID   string `json:"to_contract_id,omitempty"`
	ToAddress      string `json:"to_address,omitempty"`
	ContractID     string `json:"contract_id,omitempty"`
	AssetID        string `json:"asset_id,omitempty"`
	SenderID       string `json:"sender_id,omitempty"`
	RecipientID    string `json:"recipient_id,omitempty"`
	SubID          string `json:"sub_id,omitempty"`
}

// Transaction is one transaction plus its inputs/outputs/receipts and
// status, as fetched from the node alongside the sealed block.
type Transaction struct {
	ID       string    `json:"id"`
	Index    uint32    `json:"index"`
	Status   string    `json:"status"`
	Kind     string    `json:"kind"`
	Inputs   []Input   `json:"inputs"`
	Outputs  []Output  `json:"outputs"`
	Receipts []Receipt `json:"receipts"`
}

// MsgPayload is one full block's worth of material, produced by C4 and
// consumed by C5 (spec.md §3).
type MsgPayload struct {
	Block        Block         `json:"block"`
	Transactions []Transaction `json:"transactions"`
	Metadata     Metadata      `json:"metadata"`
	Namespace    string        `json:"namespace,omitempty"`
}

// RecordPacket is the unit of work flowing from C5's packet builders into
// the store and the record-stream publisher (spec.md §3).
type RecordPacket struct {
	Entity         string            `json:"entity"`
	SubjectID      string            `json:"subject_id"`
	SubjectParams  map[string]string `json:"subject_params"`
	SubjectStr     string            `json:"subject_str"`
	Value          []byte            `json:"value"`
	BlockHeight    uint64            `json:"block_height"`
	TxIndex        *uint32           `json:"tx_index,omitempty"`
	InputIndex     *uint32           `json:"input_index,omitempty"`
	OutputIndex    *uint32           `json:"output_index,omitempty"`
	ReceiptIndex   *uint32           `json:"receipt_index,omitempty"`
	BlockTimestamp time.Time         `json:"block_timestamp"`
	Namespace      string            `json:"namespace,omitempty"`
	// Columns holds the store's indexable SQL columns for this packet
	// (gorm snake_case names), including the pointer indices above —
	// populated by the packet builder, consumed verbatim by C5's
	// store.Record.Columns.
	Columns map[string]any `json:"-"`
}

// StreamResponse is what C6 delivers to WebSocket clients (spec.md §3, §6.2).
type StreamResponse struct {
	Subject   string `json:"subject"`
	SubjectID string `json:"subject_id"`
	Version   string `json:"version"`
	Payload   any    `json:"payload"`
}

const ResponseVersion = "v1"
