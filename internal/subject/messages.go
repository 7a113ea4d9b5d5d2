package subject

// Messages is the only subject variant over the "message" entity (bridge
// messages, distinct from inputs_message which references a message as a
// transaction input). Grounded on original_source
// crates/domains/src/messages/subjects.rs.
var Messages = register(&EntitySpec{
	ID:       "messages",
	Entity:   "message",
	QueryAll: "messages.>",
	Format:   "messages.{height}.{tx_id}.{tx_index}.{message_index}.{sender}.{recipient}",
	Fields: []Field{
		{Name: "height"},
		{Name: "tx_id"},
		{Name: "tx_index"},
		{Name: "message_index"},
		{Name: "sender", SQLColumn: "sender_id"},
		{Name: "recipient", SQLColumn: "recipient_id"},
	},
})

func NewMessagesSubject(height, txID, txIndex, messageIndex, sender, recipient string) *Subject {
	s, _ := New(Messages.ID, optional(map[string]string{
		"height": height, "tx_id": txID, "tx_index": txIndex,
		"message_index": messageIndex, "sender": sender, "recipient": recipient,
	}))
	return s
}
