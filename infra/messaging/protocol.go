// Package messaging adapts the transfer saga to the Kafka delivery
// substrate: a request/reply dispatcher with message-age expiry, bounded
// retries and a dead-letter channel, a fire-and-forget push consumer, and
// the dead-letter recovery worker.
package messaging

import (
	"time"
)

// Command identifiers carried in the CMD message header.
const (
	CmdWithdraw   = "request.withdraw"
	CmdDeposit    = "request.deposit"
	CmdCompensate = "request.compensate"
	CmdTest       = "test.message"
)

// Message header names.
const (
	HeaderCmd           = "CMD"
	HeaderReplyTopic    = "REPLY_TOPIC"
	HeaderCorrelationID = "CORRELATION_ID"
)

// DeadLetterSuffix is appended to the request topic to name the dead-letter
// channel.
const DeadLetterSuffix = ".dlt"

// InboundMessage is one consumed record, decoupled from the Kafka client so
// the dispatcher is testable without a broker.
type InboundMessage struct {
	Cmd           string
	Key           []byte
	Value         []byte
	ProducedAt    time.Time // producer CreateTime, basis of the age check
	ReplyTopic    string
	CorrelationID string
}
