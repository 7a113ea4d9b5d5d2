package domain

import (
	"fmt"

	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/subject"
	applog "github.com/fuel-streams/streams/pkg/logger"
)

// BuildAllPackets fans payload out into per-entity packets in the
// deterministic order spec.md §4.5.1 requires: block, then per-transaction
// (transaction, inputs, outputs, receipts, then for each input its utxo
// packet followed by its predicate packet, where present). Packet
// indices are the source collection's index, stable within a block.
func BuildAllPackets(payload MsgPayload, c codec.Codec) ([]RecordPacket, error) {
	var packets []RecordPacket

	blockPacket, err := buildBlockPacket(payload, c)
	if err != nil {
		return nil, err
	}
	packets = append(packets, blockPacket)

	for txIndex, tx := range payload.Transactions {
		txPacket, err := buildTransactionPacket(payload, uint32(txIndex), tx, c)
		if err != nil {
			return nil, err
		}
		packets = append(packets, txPacket)

		for i, in := range tx.Inputs {
			p, err := buildInputPacket(payload, uint32(txIndex), tx, uint32(i), in, c)
			if err != nil {
				return nil, err
			}
			packets = append(packets, p)
		}
		for i, out := range tx.Outputs {
			p, err := buildOutputPacket(payload, uint32(txIndex), tx, uint32(i), out, c)
			if err != nil {
				return nil, err
			}
			packets = append(packets, p)
		}
		for i, r := range tx.Receipts {
			p, err := buildReceiptPacket(payload, uint32(txIndex), tx, uint32(i), r, c)
			if err != nil {
				return nil, err
			}
			packets = append(packets, p)
		}
		for i, in := range tx.Inputs {
			if utxoPacket, ok := buildUtxoPacket(payload, tx, uint32(i), in, c); ok {
				packets = append(packets, utxoPacket)
			}
			if predicatePacket, ok := buildPredicatePacket(payload, uint32(txIndex), tx, uint32(i), in, c); ok {
				packets = append(packets, predicatePacket)
			}
		}
	}

	return packets, nil
}

func newPacket(entity string, subj *subject.Subject, value []byte, payload MsgPayload, pointer func(*RecordPacket)) RecordPacket {
	p := subj.WithNamespace(payload.Namespace).ToPayload()
	rp := RecordPacket{
		Entity:         entity,
		SubjectID:      p.Subject,
		SubjectParams:  p.Params,
		SubjectStr:     subj.WithNamespace(payload.Namespace).Parse(),
		Value:          value,
		BlockHeight:    payload.Metadata.Height,
		BlockTimestamp: payload.Metadata.Timestamp,
		Namespace:      payload.Namespace,
	}
	pointer(&rp)
	return rp
}

func u32p(v uint32) *uint32 { return &v }

func buildBlockPacket(payload MsgPayload, c codec.Codec) (RecordPacket, error) {
	value, err := c.Encode(payload.Block)
	if err != nil {
		return RecordPacket{}, err
	}
	subj := subject.NewBlocksSubject(fmt.Sprint(payload.Block.Height), payload.Block.Producer)
	return newPacket("block", subj, value, payload, func(rp *RecordPacket) {
		rp.Columns = map[string]any{
			"block_height": payload.Block.Height,
			"producer":     payload.Block.Producer,
		}
	}), nil
}

func buildTransactionPacket(payload MsgPayload, txIndex uint32, tx Transaction, c codec.Codec) (RecordPacket, error) {
	value, err := c.Encode(tx)
	if err != nil {
		return RecordPacket{}, err
	}
	subj := subject.NewTransactionsSubject(
		fmt.Sprint(payload.Metadata.Height), fmt.Sprint(txIndex), tx.ID, tx.Status, tx.Kind,
	)
	return newPacket("transaction", subj, value, payload, func(rp *RecordPacket) {
		rp.TxIndex = u32p(txIndex)
		rp.Columns = map[string]any{
			"block_height": payload.Metadata.Height,
			"tx_index":     txIndex,
			"tx_id":        tx.ID,
			"status":       tx.Status,
			"tx_type":      tx.Kind,
		}
	}), nil
}

func buildInputPacket(payload MsgPayload, txIndex uint32, tx Transaction, inputIndex uint32, in Input, c codec.Codec) (RecordPacket, error) {
	value, err := c.Encode(in)
	if err != nil {
		return RecordPacket{}, err
	}
	height := fmt.Sprint(payload.Metadata.Height)
	txi := fmt.Sprint(txIndex)
	ii := fmt.Sprint(inputIndex)

	var subj *subject.Subject
	switch in.Kind {
	case "contract":
		subj = subject.NewInputsContractSubject(height, tx.ID, txi, ii, in.ContractID)
	case "message":
		subj = subject.NewInputsMessageSubject(height, tx.ID, txi, ii, in.Sender, in.Recipient)
	default:
		subj = subject.NewInputsCoinSubject(height, tx.ID, txi, ii, in.Owner, in.AssetID)
	}

	return newPacket("input", subj, value, payload, func(rp *RecordPacket) {
		rp.TxIndex = u32p(txIndex)
		rp.InputIndex = u32p(inputIndex)
		rp.Columns = map[string]any{
			"block_height": payload.Metadata.Height,
			"tx_index":     txIndex,
			"input_index":  inputIndex,
			"tx_id":        tx.ID,
			"input_type":   in.Kind,
			"owner_id":     in.Owner,
			"asset_id":     in.AssetID,
			"contract_id":  in.ContractID,
			"sender_id":    in.Sender,
			"recipient_id": in.Recipient,
		}
	}), nil
}

// buildOutputPacket implements the Open Question #1 decision: for
// Output::Contract, contract_id is resolved via tx.inputs[output.InputIndex];
// an out-of-range index logs and leaves the field defaulted rather than
// rejecting the block, and a nil index leaves it defaulted without a log.
func buildOutputPacket(payload MsgPayload, txIndex uint32, tx Transaction, outputIndex uint32, out Output, c codec.Codec) (RecordPacket, error) {
	resolved := out
	if out.Kind == "contract" && resolved.ContractID == "" && out.InputIndex != nil {
		if idx := *out.InputIndex; idx >= 0 && idx < len(tx.Inputs) {
			resolved.ContractID = tx.Inputs[idx].ContractID
		} else {
			applog.L().Warn("output contract input_index out of range, leaving contract_id unset",
				"tx_id", tx.ID, "output_index", outputIndex, "input_index", idx, "num_inputs", len(tx.Inputs))
		}
	}

	value, err := c.Encode(resolved)
	if err != nil {
		return RecordPacket{}, err
	}
	height := fmt.Sprint(payload.Metadata.Height)
	txi := fmt.Sprint(txIndex)
	oi := fmt.Sprint(outputIndex)

	var subj *subject.Subject
	switch resolved.Kind {
	case "contract":
		subj = subject.NewOutputsContractSubject(height, tx.ID, txi, oi, resolved.ContractID)
	case "change":
		subj = subject.NewOutputsChangeSubject(height, tx.ID, txi, oi, resolved.To, resolved.AssetID)
	case "variable":
		subj = subject.NewOutputsVariableSubject(height, tx.ID, txi, oi, resolved.To, resolved.AssetID)
	case "contract_created":
		subj = subject.NewOutputsContractCreatedSubject(height, tx.ID, txi, oi, resolved.ContractID)
	default:
		subj = subject.NewOutputsCoinSubject(height, tx.ID, txi, oi, resolved.To, resolved.AssetID)
	}

	return newPacket("output", subj, value, payload, func(rp *RecordPacket) {
		rp.TxIndex = u32p(txIndex)
		rp.OutputIndex = u32p(outputIndex)
		rp.Columns = map[string]any{
			"block_height": payload.Metadata.Height,
			"tx_index":     txIndex,
			"output_index": outputIndex,
			"tx_id":        tx.ID,
			"output_type":  resolved.Kind,
			"to_address":   resolved.To,
			"asset_id":     resolved.AssetID,
			"contract_id":  resolved.ContractID,
		}
	}), nil
}

func buildReceiptPacket(payload MsgPayload, txIndex uint32, tx Transaction, receiptIndex uint32, r Receipt, c codec.Codec) (RecordPacket, error) {
	value, err := c.Encode(r)
	if err != nil {
		return RecordPacket{}, err
	}
	height := fmt.Sprint(payload.Metadata.Height)
	txi := fmt.Sprint(txIndex)
	ri := fmt.Sprint(receiptIndex)

	id := receiptSubjectID(r.Kind)
	values := map[string]string{
		"height": height, "tx_id": tx.ID, "tx_index": txi, "receipt_index": ri,
	}
	switch r.Kind {
	case "call":
		values["from"] = r.FromContractID
		values["to"] = r.ToContractID
		values["asset"] = r.AssetID
	case "transfer":
		values["from"] = r.FromContractID
		values["to"] = r.ToContractID
		values["asset"] = r.AssetID
	case "transfer_out":
		values["from"] = r.FromContractID
		values["to"] = r.ToAddress
		values["asset"] = r.AssetID
	case "message_out":
		values["sender"] = r.SenderID
		values["recipient"] = r.RecipientID
	case "mint", "burn":
		values["contract"] = r.ContractID
		values["sub_id"] = r.SubID
	case "script_result":
		// no extra fields
	default: // return, return_data, panic, revert, log, log_data
		values["id"] = r.ContractID
	}

	subj, err := subject.New(id, values)
	if err != nil {
		return RecordPacket{}, err
	}

	return newPacket("receipt", subj, value, payload, func(rp *RecordPacket) {
		rp.TxIndex = u32p(txIndex)
		rp.ReceiptIndex = u32p(receiptIndex)
		rp.Columns = map[string]any{
			"block_height":     payload.Metadata.Height,
			"tx_index":         txIndex,
			"receipt_index":    receiptIndex,
			"tx_id":            tx.ID,
			"receipt_type":     r.Kind,
			"from_contract_id": r.FromContractID,
			"to_contract_id":   r.ToContractID,
			"to_address":       r.ToAddress,
			"contract_id":      r.ContractID,
			"asset_id":         r.AssetID,
			"sender_id":        r.SenderID,
			"recipient_id":     r.RecipientID,
			"sub_id":           r.SubID,
		}
	}), nil
}

func receiptSubjectID(kind string) string {
	return "receipts_" + kind
}

// buildUtxoPacket emits one UTXO packet per input that actually spends a
// coin/contract/message utxo. Returns ok=false for inputs with no
// corresponding utxo representation.
func buildUtxoPacket(payload MsgPayload, tx Transaction, inputIndex uint32, in Input, c codec.Codec) (RecordPacket, bool) {
	value, err := c.Encode(in)
	if err != nil {
		applog.L().Error("failed to encode utxo packet", "tx_id", tx.ID, "error", err)
		return RecordPacket{}, false
	}

	ii := fmt.Sprint(inputIndex)
	var subj *subject.Subject
	switch in.Kind {
	case "contract":
		subj = subject.NewUtxosContractSubject(tx.ID, ii)
	case "message":
		subj = subject.NewUtxosMessageSubject(tx.ID, ii)
	case "coin":
		subj = subject.NewUtxosCoinSubject(tx.ID, ii)
	default:
		return RecordPacket{}, false
	}

	return newPacket("utxo", subj, value, payload, func(rp *RecordPacket) {
		rp.InputIndex = u32p(inputIndex)
		rp.Columns = map[string]any{
			"block_height": payload.Metadata.Height,
			"tx_id":        tx.ID,
			"input_index":  inputIndex,
			"utxo_type":    in.Kind,
		}
	}), true
}

// buildPredicatePacket emits a predicate packet for inputs that carry a
// predicate address; an empty blob_id is expected, not an error, and still
// gets a packet. Inputs with no predicate address (plain signed coins) get
// none.
func buildPredicatePacket(payload MsgPayload, txIndex uint32, tx Transaction, inputIndex uint32, in Input, c codec.Codec) (RecordPacket, bool) {
	if in.Predicate == "" {
		return RecordPacket{}, false
	}

	value, err := c.Encode(in)
	if err != nil {
		applog.L().Error("failed to encode predicate packet", "tx_id", tx.ID, "error", err)
		return RecordPacket{}, false
	}

	height := fmt.Sprint(payload.Metadata.Height)
	txi := fmt.Sprint(txIndex)
	ii := fmt.Sprint(inputIndex)
	subj := subject.NewPredicatesSubject(height, tx.ID, txi, ii, in.BlobID, in.Predicate)

	return newPacket("predicate", subj, value, payload, func(rp *RecordPacket) {
		rp.TxIndex = u32p(txIndex)
		rp.InputIndex = u32p(inputIndex)
		rp.Columns = map[string]any{
			"block_height":     payload.Metadata.Height,
			"tx_index":         txIndex,
			"input_index":      inputIndex,
			"tx_id":            tx.ID,
			"blob_id":          in.BlobID,
			"predicate_address": in.Predicate,
		}
	}), true
}
