package subject

// Predicates is the only subject variant over the "predicate" entity.
// Grounded on original_source crates/fuel-streams-domains/src/predicates/subjects.rs.
var Predicates = register(&EntitySpec{
	ID:       "predicates",
	Entity:   "predicate",
	QueryAll: "predicates.>",
	Format:   "predicates.{height}.{tx_id}.{tx_index}.{input_index}.{blob_id}.{predicate_address}",
	Fields: []Field{
		{Name: "height"},
		{Name: "tx_id"},
		{Name: "tx_index"},
		{Name: "input_index"},
		{Name: "blob_id"},
		{Name: "predicate_address"},
	},
})

func NewPredicatesSubject(height, txID, txIndex, inputIndex, blobID, predicateAddress string) *Subject {
	s, _ := New(Predicates.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"input_index": inputIndex, "blob_id": blobID, "predicate_address": predicateAddress,
	}))
	return s
}
