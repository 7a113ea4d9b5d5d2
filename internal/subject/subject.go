// Package subject implements the typed, hierarchical subject naming scheme
// (C1 in spec.md §4.1): a subject is simultaneously a broker routing key, a
// SQL filter, and a JSON-serializable query payload.
//
// Each record family (blocks, transactions, inputs-*, outputs-*,
// receipts-*, utxos-*, predicates, messages) registers an EntitySpec
// describing its wire format, SQL column mapping, and static predicate.
// Subject values are built either through New and the typed per-family
// constructors (NewBlocksSubject, NewTransactionsSubject, ...) or
// FromPayload (decoded from client JSON) and are immutable once built.
package subject

import (
	"sort"
	"strings"

	apperrors "github.com/fuel-streams/streams/pkg/errors"
)

// Field describes one optional, typed component of a subject.
type Field struct {
	// Name is the wire/JSON key, snake_case (spec.md Open Question #3: one
	// convention per boundary; wire JSON is snake_case throughout).
	Name string
	// SQLColumn overrides Name when the database column differs (e.g.
	// "owner" -> "owner_id" to avoid clashing with a discriminator column).
	// A field named "height" maps to the block_height column without one.
	SQLColumn string
	// Description documents the field for API consumers.
	Description string
}

func (f Field) column() string {
	if f.SQLColumn != "" {
		return f.SQLColumn
	}
	if f.Name == "height" {
		return "block_height"
	}
	return f.Name
}

// EntitySpec is the static schema for one subject variant.
type EntitySpec struct {
	// ID is the short tag used as the subject root and as the
	// discriminator in SubjectPayload.Subject (e.g. "inputs_coin").
	ID string
	// Entity is the record family this variant belongs to (e.g. "input").
	// Multiple EntitySpecs can share an Entity (all input variants -> "input").
	Entity string
	// QueryAll is the root wildcard, e.g. "inputs.coin.>".
	QueryAll string
	// ExtraWhere is a static SQL predicate AND'd into every query issued
	// against this variant, used to discriminate rows sharing one physical
	// table (e.g. "input_type = 'coin'").
	ExtraWhere string
	// Format is the dot-delimited template, e.g. "inputs.coin.{owner}".
	// Tokens must match a Field.Name exactly, in the same order as Fields.
	Format string
	// Fields lists this variant's optional fields, in wire order.
	Fields []Field
}

func (s *EntitySpec) fieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// registry maps EntitySpec.ID to its schema. Populated by each family's
// package-level register(...) variables (blocks.go, transactions.go,
// inputs.go, ...).
var registry = map[string]*EntitySpec{}

func register(spec *EntitySpec) *EntitySpec {
	if _, exists := registry[spec.ID]; exists {
		panic("subject: duplicate id registered: " + spec.ID)
	}
	registry[spec.ID] = spec
	return spec
}

// Lookup returns the registered schema for id, or ok=false if unknown.
func Lookup(id string) (*EntitySpec, bool) {
	spec, ok := registry[id]
	return spec, ok
}

// IDs returns every registered subject id, sorted, for diagnostics and
// tests.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subject is an immutable, constructed instance of an EntitySpec: zero or
// more of its fields are set to a rendered string value, the rest are None
// (rendered as "*" in wire form, omitted from SQL predicates).
type Subject struct {
	spec      *EntitySpec
	values    map[string]string
	namespace string
}

// New constructs a Subject for id with the given field values. Unknown
// field names are a programming error (the typed per-entity constructors in
// blocks.go/inputs.go/... never pass one); fields absent from values are
// treated as None.
func New(id string, values map[string]string) (*Subject, error) {
	spec, ok := registry[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown subject id: "+id, nil)
	}
	known := map[string]bool{}
	for _, f := range spec.Fields {
		known[f.Name] = true
	}
	clean := make(map[string]string, len(values))
	for k, v := range values {
		if !known[k] {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown field \""+k+"\" for subject "+id, nil)
		}
		clean[k] = v
	}
	return &Subject{spec: spec, values: clean}, nil
}

// WithNamespace returns a copy of s prefixed with namespace on every
// rendered subject string and SQL LIKE filter (spec.md invariant 6).
func (s *Subject) WithNamespace(namespace string) *Subject {
	cp := *s
	cp.namespace = namespace
	return &cp
}

// ID returns the subject's short tag.
func (s *Subject) ID() string { return s.spec.ID }

// Entity returns the record family this subject belongs to.
func (s *Subject) Entity() string { return s.spec.Entity }

// QueryAll returns the variant's root wildcard.
func (s *Subject) QueryAll() string { return s.withNamespacePrefix(s.spec.QueryAll) }

func (s *Subject) withNamespacePrefix(rendered string) string {
	if s.namespace == "" {
		return rendered
	}
	return s.namespace + "." + rendered
}

// Get returns the value set for field, and whether it was set at all.
func (s *Subject) Get(field string) (string, bool) {
	v, ok := s.values[field]
	return v, ok
}

// Parse renders the subject to its wire form: all-None yields QueryAll,
// otherwise each {field} token is substituted with its value, or "*" when
// unset (spec.md §4.1 "Wildcard rules").
func (s *Subject) Parse() string {
	if len(s.values) == 0 {
		return s.QueryAll()
	}
	out := s.spec.Format
	for _, f := range s.spec.Fields {
		token := "{" + f.Name + "}"
		v, ok := s.values[f.Name]
		if !ok {
			v = "*"
		}
		out = strings.Replace(out, token, v, 1)
	}
	return s.withNamespacePrefix(out)
}

// ToSQLWhere renders the conjunction of "column = 'value'" for each set
// field, AND'd with the variant's ExtraWhere and an optional namespace
// LIKE filter. Returns ("", false) when there is nothing to filter on.
func (s *Subject) ToSQLWhere() (string, bool) {
	var clauses []string
	for _, f := range s.spec.Fields {
		if v, ok := s.values[f.Name]; ok {
			clauses = append(clauses, sqlEquals(f.column(), v))
		}
	}
	if s.spec.ExtraWhere != "" {
		clauses = append(clauses, s.spec.ExtraWhere)
	}
	if s.namespace != "" {
		clauses = append(clauses, "subject LIKE "+sqlQuote(s.namespace+".%"))
	}
	if len(clauses) == 0 {
		return "", false
	}
	return strings.Join(clauses, " AND "), true
}

// ToSQLSelect lists the SQL columns backing this variant's set fields, in
// field order. Used to narrow pagination cursors to the columns a query
// actually filters on.
func (s *Subject) ToSQLSelect() []string {
	var cols []string
	for _, f := range s.spec.Fields {
		if _, ok := s.values[f.Name]; ok {
			cols = append(cols, f.column())
		}
	}
	return cols
}

// Payload is the JSON round-trip form of a Subject: {subject: id, params: {...}}.
type Payload struct {
	Subject string            `json:"subject"`
	Params  map[string]string `json:"params"`
}

// ToPayload converts s to its client-facing JSON form.
func (s *Subject) ToPayload() Payload {
	params := make(map[string]string, len(s.values))
	for k, v := range s.values {
		params[k] = v
	}
	return Payload{Subject: s.spec.ID, Params: params}
}

// FromPayload decodes a client-submitted {subject, params} blob into a
// typed Subject, rejecting unknown subject ids or unknown parameter keys.
func FromPayload(p Payload) (*Subject, error) {
	return New(p.Subject, p.Params)
}

func sqlEquals(column, value string) string {
	return column + " = " + sqlQuote(value)
}

func sqlQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
