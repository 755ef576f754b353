package notification

import (
	"context"
	"errors"
)

type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindApproval          Kind = "approval"
	KindReportReady       Kind = "report_ready"
)

var ErrNoRecipient = errors.New("notification has no recipient")

// Message is one outbound notification. Params are template values.
type Message struct {
	Recipient string            `json:"recipient"`
	Kind      Kind              `json:"kind"`
	Params    map[string]string `json:"params"`
}

// Sender delivers a single message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
