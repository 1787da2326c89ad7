package messaging

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"localhost:9092"}, ParseBrokers("localhost:9092"))
	assert.Equal(t,
		[]string{"kafka-1:9092", "kafka-2:9092"},
		ParseBrokers(" kafka-1:9092 , kafka-2:9092 ,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestToInbound(t *testing.T) {
	produced := time.Now().Add(-2 * time.Second)
	msg := kafka.Message{
		Key:   []byte("tx-1"),
		Value: []byte(`{"transactionId":"tx-1"}`),
		Time:  produced,
		Headers: []kafka.Header{
			{Key: HeaderCmd, Value: []byte(CmdWithdraw)},
			{Key: HeaderReplyTopic, Value: []byte("bank.transfer.reply")},
			{Key: HeaderCorrelationID, Value: []byte("corr-42")},
		},
	}

	in := toInbound(msg)

	assert.Equal(t, CmdWithdraw, in.Cmd)
	assert.Equal(t, []byte("tx-1"), in.Key)
	assert.Equal(t, msg.Value, in.Value)
	assert.Equal(t, produced, in.ProducedAt)
	assert.Equal(t, "bank.transfer.reply", in.ReplyTopic)
	assert.Equal(t, "corr-42", in.CorrelationID)
}

func TestToInbound_MissingHeaders(t *testing.T) {
	in := toInbound(kafka.Message{Value: []byte("{}")})

	assert.Empty(t, in.Cmd)
	assert.Empty(t, in.ReplyTopic)
	assert.Empty(t, in.CorrelationID)
}
