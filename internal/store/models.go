package store

import "time"

// Row models mirror spec.md §4.2's per-entity table contract: a unique
// subject, an opaque payload, block_height plus per-entity index columns,
// and the indexable columns each entity's subject fields filter on.
// Grounded on the teacher's GORM model conventions (struct tags, no
// embedded gorm.Model so the primary key stays BlockHeight-ordered).

// BlockRow is the "blocks" table.
type BlockRow struct {
	Subject     string `gorm:"uniqueIndex;not null"`
	Value       []byte `gorm:"not null"`
	BlockHeight uint64 `gorm:"primaryKey"`
	Producer    string `gorm:"index"`
	Cursor      string
	CreatedAt   time.Time
	PublishedAt time.Time
}

func (BlockRow) TableName() string { return "blocks" }

// TransactionRow is the "transactions" table.
type TransactionRow struct {
	Subject     string `gorm:"uniqueIndex;not null"`
	Value       []byte `gorm:"not null"`
	BlockHeight uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex     uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID        string `gorm:"index"`
	Status      string `gorm:"index"`
	TxType      string `gorm:"index"`
	Cursor      string
	CreatedAt   time.Time
	PublishedAt time.Time
}

func (TransactionRow) TableName() string { return "transactions" }

// InputRow is the "inputs" table, shared by inputs_coin/contract/message.
type InputRow struct {
	Subject      string `gorm:"uniqueIndex;not null"`
	Value        []byte `gorm:"not null"`
	BlockHeight  uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex      uint32 `gorm:"primaryKey;autoIncrement:false"`
	InputIndex   uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID         string `gorm:"index"`
	InputType    string `gorm:"index"`
	OwnerID      string `gorm:"index"`
	AssetID      string `gorm:"index"`
	ContractID   string `gorm:"index"`
	SenderID     string `gorm:"index"`
	RecipientID  string `gorm:"index"`
	Cursor       string
	CreatedAt    time.Time
	PublishedAt  time.Time
}

func (InputRow) TableName() string { return "inputs" }

// OutputRow is the "outputs" table, shared by all output variants.
type OutputRow struct {
	Subject     string `gorm:"uniqueIndex;not null"`
	Value       []byte `gorm:"not null"`
	BlockHeight uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex     uint32 `gorm:"primaryKey;autoIncrement:false"`
	OutputIndex uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID        string `gorm:"index"`
	OutputType  string `gorm:"index"`
	ToAddress   string `gorm:"index"`
	AssetID     string `gorm:"index"`
	ContractID  string `gorm:"index"`
	Cursor      string
	CreatedAt   time.Time
	PublishedAt time.Time
}

func (OutputRow) TableName() string { return "outputs" }

// ReceiptRow is the "receipts" table, shared by all thirteen receipt kinds.
type ReceiptRow struct {
	Subject        string `gorm:"uniqueIndex;not null"`
	Value          []byte `gorm:"not null"`
	BlockHeight    uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex        uint32 `gorm:"primaryKey;autoIncrement:false"`
	ReceiptIndex   uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID           string `gorm:"index"`
	ReceiptType    string `gorm:"index"`
	FromContractID string `gorm:"index"`
	ToContractID   string `gorm:"index"`
	ToAddress      string `gorm:"index"`
	ContractID     string `gorm:"index"`
	AssetID        string `gorm:"index"`
	SenderID       string `gorm:"index"`
	RecipientID    string `gorm:"index"`
	SubID          string `gorm:"index"`
	Cursor         string
	CreatedAt      time.Time
	PublishedAt    time.Time
}

func (ReceiptRow) TableName() string { return "receipts" }

// UtxoRow is the "utxos" table, shared by coin/message/contract utxos.
type UtxoRow struct {
	Subject     string `gorm:"uniqueIndex;not null"`
	Value       []byte `gorm:"not null"`
	BlockHeight uint64 `gorm:"index"`
	TxID        string `gorm:"primaryKey"`
	InputIndex  uint32 `gorm:"primaryKey;autoIncrement:false"`
	UtxoType    string `gorm:"index"`
	Cursor      string
	CreatedAt   time.Time
	PublishedAt time.Time
}

func (UtxoRow) TableName() string { return "utxos" }

// PredicateRow is the "predicates" table.
type PredicateRow struct {
	Subject          string `gorm:"uniqueIndex;not null"`
	Value            []byte `gorm:"not null"`
	BlockHeight      uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex          uint32 `gorm:"primaryKey;autoIncrement:false"`
	InputIndex       uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID             string `gorm:"index"`
	BlobID           string `gorm:"index"`
	PredicateAddress string `gorm:"index"`
	Cursor           string
	CreatedAt        time.Time
	PublishedAt      time.Time
}

func (PredicateRow) TableName() string { return "predicates" }

// MessageRow is the "messages" table (bridge messages).
type MessageRow struct {
	Subject      string `gorm:"uniqueIndex;not null"`
	Value        []byte `gorm:"not null"`
	BlockHeight  uint64 `gorm:"primaryKey;autoIncrement:false"`
	TxIndex      uint32 `gorm:"primaryKey;autoIncrement:false"`
	MessageIndex uint32 `gorm:"primaryKey;autoIncrement:false"`
	TxID         string `gorm:"index"`
	SenderID     string `gorm:"index"`
	RecipientID  string `gorm:"index"`
	Cursor       string
	CreatedAt    time.Time
	PublishedAt  time.Time
}

func (MessageRow) TableName() string { return "messages" }

// Models lists every row type AutoMigrate must create, in a fixed order
// (blocks first: other tables don't foreign-key to it, but ordering keeps
// migration logs stable and matches registry entity order).
func Models() []any {
	return []any{
		&BlockRow{}, &TransactionRow{}, &InputRow{}, &OutputRow{},
		&ReceiptRow{}, &UtxoRow{}, &PredicateRow{}, &MessageRow{},
	}
}
