package subject

// Table returns the physical database table backing a subject's entity
// family, per spec.md §4.2 (one table per record family, input/output/
// receipt variants sharing a table distinguished by a discriminator
// column).
func Table(entity string) string {
	switch entity {
	case "block":
		return "blocks"
	case "transaction":
		return "transactions"
	case "input":
		return "inputs"
	case "output":
		return "outputs"
	case "receipt":
		return "receipts"
	case "utxo":
		return "utxos"
	case "predicate":
		return "predicates"
	case "message":
		return "messages"
	default:
		return ""
	}
}

// Entities lists every record family known to the registry, in the fixed
// order packet builders and store migrations iterate them.
func Entities() []string {
	return []string{
		"block", "transaction", "input", "output", "receipt", "utxo",
		"predicate", "message",
	}
}
