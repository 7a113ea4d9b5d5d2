package store

// tableRow is implemented by every row model so generic store operations
// can convert a freshly scanned row back to the entity-agnostic Item shape.
type tableRow interface {
	toItem() Item
}

func ptr(v uint32) *uint32 { return &v }

func (r BlockRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer:     Pointer{BlockHeight: r.BlockHeight},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r TransactionRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer:     Pointer{BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex)},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r InputRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer: Pointer{
			BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex), InputIndex: ptr(r.InputIndex),
		},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r OutputRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer: Pointer{
			BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex), OutputIndex: ptr(r.OutputIndex),
		},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r ReceiptRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer: Pointer{
			BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex), ReceiptIndex: ptr(r.ReceiptIndex),
		},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r UtxoRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer:     Pointer{BlockHeight: r.BlockHeight, InputIndex: ptr(r.InputIndex)},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r PredicateRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer: Pointer{
			BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex), InputIndex: ptr(r.InputIndex),
		},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func (r MessageRow) toItem() Item {
	return Item{
		Subject: r.Subject, Value: r.Value,
		Pointer: Pointer{
			BlockHeight: r.BlockHeight, TxIndex: ptr(r.TxIndex), OutputIndex: ptr(r.MessageIndex),
		},
		Cursor:      r.Cursor,
		CreatedAt:   r.CreatedAt,
		PublishedAt: r.PublishedAt,
	}
}
