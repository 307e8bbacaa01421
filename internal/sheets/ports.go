package sheets

import (
	"context"

	"pocketbook/internal/core"
)

// Ports for outbound adapters.
type (
	// ReceiptWriter appends one recorded transaction to an external ledger
	// and returns a reference to the written row.
	ReceiptWriter interface {
		AppendReceipt(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
