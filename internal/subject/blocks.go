package subject

// Blocks is the only subject variant over the "block" entity.
//
// Grounded on original_source crates/fuel-streams-core/src/blocks/subjects.rs:
// "blocks.{height}.{producer}".
var Blocks = register(&EntitySpec{
	ID:       "blocks",
	Entity:   "block",
	QueryAll: "blocks.>",
	Format:   "blocks.{height}.{producer}",
	Fields: []Field{
		{Name: "height", Description: "block height"},
		{Name: "producer", Description: "block producer address"},
	},
})

// NewBlocksSubject builds a Blocks subject. height/producer may be empty to
// leave the field unset (wildcard).
func NewBlocksSubject(height, producer string) *Subject {
	s, _ := New(Blocks.ID, optional(map[string]string{
		"height":   height,
		"producer": producer,
	}))
	return s
}

// optional drops empty-string entries so unset fields are genuinely absent
// (vs. present-and-equal-to-""), matching None semantics everywhere a typed
// constructor is called with a zero value for "don't care".
func optional(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
