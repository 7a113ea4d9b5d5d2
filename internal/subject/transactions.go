package subject

// Transactions is the only subject variant over the "transaction" entity.
//
// Grounded on original_source crates/fuel-streams-core/src/subjects/transactions.rs:
// "transactions.{height}.{tx_index}.{tx_id}.{status}.{kind}".
var Transactions = register(&EntitySpec{
	ID:       "transactions",
	Entity:   "transaction",
	QueryAll: "transactions.>",
	Format:   "transactions.{height}.{tx_index}.{tx_id}.{status}.{kind}",
	Fields: []Field{
		{Name: "height", Description: "block height"},
		{Name: "tx_index", Description: "index of the transaction within its block"},
		{Name: "tx_id", Description: "transaction id"},
		{Name: "status", Description: "transaction execution status (success, failure, submitted, squeezed_out)"},
		{Name: "kind", SQLColumn: "tx_type", Description: "transaction kind (script, create, mint, upgrade, upload, blob)"},
	},
})

// NewTransactionsSubject builds a Transactions subject; empty strings leave
// the corresponding field unset.
func NewTransactionsSubject(height, txIndex, txID, status, kind string) *Subject {
	s, _ := New(Transactions.ID, optional(map[string]string{
		"height":   height,
		"tx_index": txIndex,
		"tx_id":    txID,
		"status":   status,
		"kind":     kind,
	}))
	return s
}
