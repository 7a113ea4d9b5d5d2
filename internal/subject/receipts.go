package subject

// Receipt variants share the physical "receipts" table, discriminated by
// ExtraWhere on receipt_type. Grounded on original_source
// crates/fuel-streams-domains/src/receipts/subjects.rs and packets.rs, which
// enumerate one subject per Fuel receipt kind.
var (
	ReceiptsCall = register(&EntitySpec{
		ID: "receipts_call", Entity: "receipt",
		QueryAll: "receipts.call.>", ExtraWhere: "receipt_type = 'call'",
		Format: "receipts.call.{height}.{tx_id}.{tx_index}.{receipt_index}.{from}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "from", SQLColumn: "from_contract_id"},
			{Name: "to", SQLColumn: "to_contract_id"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	ReceiptsReturn = register(&EntitySpec{
		ID: "receipts_return", Entity: "receipt",
		QueryAll: "receipts.return.>", ExtraWhere: "receipt_type = 'return'",
		Format: "receipts.return.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsReturnData = register(&EntitySpec{
		ID: "receipts_return_data", Entity: "receipt",
		QueryAll: "receipts.return_data.>", ExtraWhere: "receipt_type = 'return_data'",
		Format: "receipts.return_data.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsPanic = register(&EntitySpec{
		ID: "receipts_panic", Entity: "receipt",
		QueryAll: "receipts.panic.>", ExtraWhere: "receipt_type = 'panic'",
		Format: "receipts.panic.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsRevert = register(&EntitySpec{
		ID: "receipts_revert", Entity: "receipt",
		QueryAll: "receipts.revert.>", ExtraWhere: "receipt_type = 'revert'",
		Format: "receipts.revert.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsLog = register(&EntitySpec{
		ID: "receipts_log", Entity: "receipt",
		QueryAll: "receipts.log.>", ExtraWhere: "receipt_type = 'log'",
		Format: "receipts.log.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsLogData = register(&EntitySpec{
		ID: "receipts_log_data", Entity: "receipt",
		QueryAll: "receipts.log_data.>", ExtraWhere: "receipt_type = 'log_data'",
		Format: "receipts.log_data.{height}.{tx_id}.{tx_index}.{receipt_index}.{id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "id", SQLColumn: "contract_id"},
		},
	})

	ReceiptsTransfer = register(&EntitySpec{
		ID: "receipts_transfer", Entity: "receipt",
		QueryAll: "receipts.transfer.>", ExtraWhere: "receipt_type = 'transfer'",
		Format: "receipts.transfer.{height}.{tx_id}.{tx_index}.{receipt_index}.{from}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "from", SQLColumn: "from_contract_id"},
			{Name: "to", SQLColumn: "to_contract_id"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	ReceiptsTransferOut = register(&EntitySpec{
		ID: "receipts_transfer_out", Entity: "receipt",
		QueryAll: "receipts.transfer_out.>", ExtraWhere: "receipt_type = 'transfer_out'",
		Format: "receipts.transfer_out.{height}.{tx_id}.{tx_index}.{receipt_index}.{from}.{to}.{asset}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "from", SQLColumn: "from_contract_id"},
			{Name: "to", SQLColumn: "to_address"},
			{Name: "asset", SQLColumn: "asset_id"},
		},
	})

	ReceiptsScriptResult = register(&EntitySpec{
		ID: "receipts_script_result", Entity: "receipt",
		QueryAll: "receipts.script_result.>", ExtraWhere: "receipt_type = 'script_result'",
		Format: "receipts.script_result.{height}.{tx_id}.{tx_index}.{receipt_index}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
		},
	})

	ReceiptsMessageOut = register(&EntitySpec{
		ID: "receipts_message_out", Entity: "receipt",
		QueryAll: "receipts.message_out.>", ExtraWhere: "receipt_type = 'message_out'",
		Format: "receipts.message_out.{height}.{tx_id}.{tx_index}.{receipt_index}.{sender}.{recipient}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "sender", SQLColumn: "sender_id"},
			{Name: "recipient", SQLColumn: "recipient_id"},
		},
	})

	ReceiptsMint = register(&EntitySpec{
		ID: "receipts_mint", Entity: "receipt",
		QueryAll: "receipts.mint.>", ExtraWhere: "receipt_type = 'mint'",
		Format: "receipts.mint.{height}.{tx_id}.{tx_index}.{receipt_index}.{contract}.{sub_id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "contract", SQLColumn: "contract_id"},
			{Name: "sub_id"},
		},
	})

	ReceiptsBurn = register(&EntitySpec{
		ID: "receipts_burn", Entity: "receipt",
		QueryAll: "receipts.burn.>", ExtraWhere: "receipt_type = 'burn'",
		Format: "receipts.burn.{height}.{tx_id}.{tx_index}.{receipt_index}.{contract}.{sub_id}",
		Fields: []Field{
			{Name: "height"}, {Name: "tx_id"}, {Name: "tx_index"}, {Name: "receipt_index"},
			{Name: "contract", SQLColumn: "contract_id"},
			{Name: "sub_id"},
		},
	})
)
