package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/minwoo-song/bankcore/pkg/dto"
)

// RequestConsumer consumes the request/reply topic, dispatches each message,
// and writes the reply to the topic named in the message's REPLY_TOPIC
// header with the correlation id echoed back.
type RequestConsumer struct {
	reader     *kafka.Reader
	writer     *kafka.Writer
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewRequestConsumer creates the request/reply consumer.
func NewRequestConsumer(
	brokers []string,
	groupID, topic string,
	writer *kafka.Writer,
	dispatcher *Dispatcher,
	logger *slog.Logger,
) *RequestConsumer {
	return &RequestConsumer{
		reader:     newReader(brokers, groupID, topic),
		writer:     writer,
		dispatcher: dispatcher,
		logger:     logger.With("consumer", "request", "topic", topic),
	}
}

// Run consumes until ctx is canceled. Each message is handled independently;
// a reply-write failure does not block consumption since the requesting side
// treats a missing reply as a timeout and owns the retry decision.
func (c *RequestConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if isContextCanceled(err) {
				return
			}
			c.logger.Error("fetch failed", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		inbound := toInbound(msg)
		reply := c.dispatcher.Handle(ctx, inbound)
		if err := c.sendReply(ctx, inbound, reply); err != nil {
			c.logger.Error("reply failed", "correlation_id", inbound.CorrelationID, "error", err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && !isContextCanceled(err) {
			c.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the underlying reader.
func (c *RequestConsumer) Close() error {
	return c.reader.Close()
}

func (c *RequestConsumer) sendReply(ctx context.Context, msg InboundMessage, reply dto.Reply) error {
	if msg.ReplyTopic == "" {
		c.logger.Warn("no reply topic on message, dropping reply", "correlation_id", msg.CorrelationID)
		return nil
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return c.writer.WriteMessages(ctx, kafka.Message{
		Topic: msg.ReplyTopic,
		Key:   msg.Key,
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: HeaderCorrelationID, Value: []byte(msg.CorrelationID)},
		},
	})
}

// PushConsumer consumes the fire-and-forget topic. Known commands are logged
// for diagnostics; unknown ones are silently ignored. No saga side effects.
type PushConsumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewPushConsumer creates the fire-and-forget consumer.
func NewPushConsumer(brokers []string, groupID, topic string, logger *slog.Logger) *PushConsumer {
	return &PushConsumer{
		reader: newReader(brokers, groupID, topic),
		logger: logger.With("consumer", "push", "topic", topic),
	}
}

// Run consumes until ctx is canceled.
func (c *PushConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if isContextCanceled(err) {
				return
			}
			c.logger.Error("fetch failed", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		switch cmd := headerValue(msg, HeaderCmd); cmd {
		case CmdTest, CmdWithdraw, CmdDeposit:
			c.logger.Info("push message received", "cmd", cmd, "value", string(msg.Value))
		default:
			// fire-and-forget: unknown commands are dropped
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && !isContextCanceled(err) {
			c.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the underlying reader.
func (c *PushConsumer) Close() error {
	return c.reader.Close()
}
