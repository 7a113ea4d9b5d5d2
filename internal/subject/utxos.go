package subject

// Utxo variants share the physical "utxos" table, discriminated by
// ExtraWhere on utxo_type. Grounded on original_source
// crates/fuel-streams-core/src/utxos/subjects.rs.
//
// Deviation from the original: UtxosCoin/UtxosContract there are keyed only
// by tx_id, which lets a transaction with more than one coin/contract input
// collide on the same subject string and violate subject uniqueness within
// an entity (spec.md invariant 1). input_index is added here to disambiguate.
var (
	UtxosCoin = register(&EntitySpec{
		ID: "utxos_coin", Entity: "utxo",
		QueryAll: "utxos.coin.>", ExtraWhere: "utxo_type = 'coin'",
		Format: "utxos.coin.{tx_id}.{input_index}",
		Fields: []Field{
			{Name: "tx_id"},
			{Name: "input_index"},
		},
	})

	UtxosMessage = register(&EntitySpec{
		ID: "utxos_message", Entity: "utxo",
		QueryAll: "utxos.message.>", ExtraWhere: "utxo_type = 'message'",
		Format: "utxos.message.{tx_id}.{input_index}",
		Fields: []Field{
			{Name: "tx_id"},
			{Name: "input_index"},
		},
	})

	UtxosContract = register(&EntitySpec{
		ID: "utxos_contract", Entity: "utxo",
		QueryAll: "utxos.contract.>", ExtraWhere: "utxo_type = 'contract'",
		Format: "utxos.contract.{tx_id}.{input_index}",
		Fields: []Field{
			{Name: "tx_id"},
			{Name: "input_index"},
		},
	})
)

func NewUtxosCoinSubject(txID, inputIndex string) *Subject {
	s, _ := New(UtxosCoin.ID, optional(map[string]string{"tx_id": txID, "input_index": inputIndex}))
	return s
}

func NewUtxosMessageSubject(txID, inputIndex string) *Subject {
	s, _ := New(UtxosMessage.ID, optional(map[string]string{"tx_id": txID, "input_index": inputIndex}))
	return s
}

func NewUtxosContractSubject(txID, inputIndex string) *Subject {
	s, _ := New(UtxosContract.ID, optional(map[string]string{"tx_id": txID, "input_index": inputIndex}))
	return s
}
