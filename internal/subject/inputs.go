package subject

// Input variants share the physical "inputs" table, discriminated by
// ExtraWhere on input_type. Grounded on original_source
// crates/domains/src/inputs/subjects.rs (InputsCoinSubject, InputsContractSubject,
// InputsMessageSubject).
var (
	InputsCoin = register(&EntitySpec{
		ID:         "inputs_coin",
		Entity:     "input",
		QueryAll:   "inputs.coin.>",
		ExtraWhere: "input_type = 'coin'",
		Format:     "inputs.coin.{height}.{tx_id}.{tx_index}.{input_index}.{owner}.{asset}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "input_index"},
			{Name: "owner", SQLColumn: "owner_id"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	InputsContract = register(&EntitySpec{
		ID:         "inputs_contract",
		Entity:     "input",
		QueryAll:   "inputs.contract.>",
		ExtraWhere: "input_type = 'contract'",
		Format:     "inputs.contract.{height}.{tx_id}.{tx_index}.{input_index}.{contract}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "input_index"},
			{Name: "contract", SQLColumn: "contract_id"},
		},
	})

	InputsMessage = register(&EntitySpec{
		ID:         "inputs_message",
		Entity:     "input",
		QueryAll:   "inputs.message.>",
		ExtraWhere: "input_type = 'message'",
		Format:     "inputs.message.{height}.{tx_id}.{tx_index}.{input_index}.{sender}.{recipient}",
		Fields: []Field{
			{Name: "height"},
			{Name: "tx_id"},
			{Name: "tx_index"},
			{Name: "input_index"},
			{Name: "sender", SQLColumn: "sender_id"},
			{Name: "recipient", SQLColumn: "recipient_id"},
		},
	})
)

func NewInputsCoinSubject(height, txID, txIndex, inputIndex, owner, asset string) *Subject {
	s, _ := New(InputsCoin.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"input_index": inputIndex, "owner": owner, "asset": asset,
	}))
	return s
}

func NewInputsContractSubject(height, txID, txIndex, inputIndex, contract string) *Subject {
	s, _ := New(InputsContract.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"input_index": inputIndex, "contract": contract,
	}))
	return s
}

func NewInputsMessageSubject(height, txID, txIndex, inputIndex, sender, recipient string) *Subject {
	s, _ := New(InputsMessage.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"input_index": inputIndex, "sender": sender, "recipient": recipient,
	}))
	return s
}
