package subject

// Output variants share the physical "outputs" table, discriminated by
// ExtraWhere on output_type. Grounded on original_source
// crates/fuel-streams-core/src/outputs/subjects.rs.
var (
	OutputsCoin = register(&EntitySpec{
		ID:         "outputs_coin",
		Entity:     "output",
		QueryAll:   "outputs.coin.>",
		ExtraWhere: "output_type = 'coin'",
		Format:     "outputs.coin.{height}.{tx_id}.{tx_index}.{output_index}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "output_index"},
			{Name: "to", SQLColumn: "to_address"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	OutputsContract = register(&EntitySpec{
		ID:         "outputs_contract",
		Entity:     "output",
		QueryAll:   "outputs.contract.>",
		ExtraWhere: "output_type = 'contract'",
		Format:     "outputs.contract.{height}.{tx_id}.{tx_index}.{output_index}.{contract}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "output_index"},
			{Name: "contract", SQLColumn: "contract_id"},
		},
	})

	OutputsChange = register(&EntitySpec{
		ID:         "outputs_change",
		Entity:     "output",
		QueryAll:   "outputs.change.>",
		ExtraWhere: "output_type = 'change'",
		Format:     "outputs.change.{height}.{tx_id}.{tx_index}.{output_index}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "output_index"},
			{Name: "to", SQLColumn: "to_address"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	OutputsVariable = register(&EntitySpec{
		ID:         "outputs_variable",
		Entity:     "output",
		QueryAll:   "outputs.variable.>",
		ExtraWhere: "output_type = 'variable'",
		Format:     "outputs.variable.{height}.{tx_id}.{tx_index}.{output_index}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "output_index"},
			{Name: "to", SQLColumn: "to_address"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	OutputsContractCreated = register(&EntitySpec{
		ID:         "outputs_contract_created",
		Entity:     "output",
		QueryAll:   "outputs.contract_created.>",
		ExtraWhere: "output_type = 'contract_created'",
		Format:     "outputs.contract_created.{height}.{tx_id}.{tx_index}.{output_index}.{contract}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "output_index"},
			{Name: "contract", SQLColumn: "contract_id"},
		},
	})
)

func NewOutputsCoinSubject(height, txID, txIndex, outputIndex, to, asset string) *Subject {
	s, _ := New(OutputsCoin.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"output_index": outputIndex, "to": to, "asset": asset,
	}))
	return s
}

func NewOutputsContractSubject(height, txID, txIndex, outputIndex, contract string) *Subject {
	s, _ := New(OutputsContract.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"output_index": outputIndex, "contract": contract,
	}))
	return s
}

func NewOutputsChangeSubject(height, txID, txIndex, outputIndex, to, asset string) *Subject {
	s, _ := New(OutputsChange.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"output_index": outputIndex, "to": to, "asset": asset,
	}))
	return s
}

func NewOutputsVariableSubject(height, txID, txIndex, outputIndex, to, asset string) *Subject {
	s, _ := New(OutputsVariable.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"output_index": outputIndex, "to": to, "asset": asset,
	}))
	return s
}

func NewOutputsContractCreatedSubject(height, txID, txIndex, outputIndex, contract string) *Subject {
	s, _ := New(OutputsContractCreated.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"output_index": outputIndex, "contract": contract,
	}))
	return s
}
