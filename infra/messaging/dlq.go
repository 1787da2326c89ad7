package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/minwoo-song/bankcore/pkg/dto"
	"github.com/minwoo-song/bankcore/pkg/service/transfer"
)

// KafkaDeadLetterer publishes exhausted messages to the dead-letter topic
// derived from the original channel name, preserving the CMD header so the
// recovery worker can route them.
type KafkaDeadLetterer struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

// NewKafkaDeadLetterer creates a dead-letter publisher for the given request
// topic.
func NewKafkaDeadLetterer(writer *kafka.Writer, requestTopic string, logger *slog.Logger) *KafkaDeadLetterer {
	topic := requestTopic + DeadLetterSuffix
	return &KafkaDeadLetterer{
		writer: writer,
		topic:  topic,
		logger: logger.With("component", "dead-letterer", "topic", topic),
	}
}

// Publish implements DeadLetterPublisher.
func (p *KafkaDeadLetterer) Publish(ctx context.Context, msg InboundMessage) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   msg.Key,
		Value: msg.Value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: HeaderCmd, Value: []byte(msg.Cmd)},
		},
	})
	if err != nil {
		return fmt.Errorf("dead-letter publish: %w", err)
	}
	p.logger.Warn("message routed to dead-letter channel", "cmd", msg.Cmd)
	return nil
}

var _ DeadLetterPublisher = (*KafkaDeadLetterer)(nil)

// RecoveryWorker consumes the dead-letter channel and replays compensation
// requests. Compensation is the one operation designed to be recovered
// out-of-band instead of retried in-line: a failed withdrawal reversal must
// never be dropped. A replay that still fails is logged for manual
// intervention, the single terminal failure mode of the system, and the
// worker moves on; it never retries indefinitely and never crashes.
type RecoveryWorker struct {
	reader    *kafka.Reader
	transfers TransferService
	logger    *slog.Logger
}

// NewRecoveryWorker creates the dead-letter recovery worker for the request
// topic's dead-letter channel.
func NewRecoveryWorker(
	brokers []string,
	groupID, requestTopic string,
	transfers TransferService,
	logger *slog.Logger,
) *RecoveryWorker {
	topic := requestTopic + DeadLetterSuffix
	return &RecoveryWorker{
		reader:    newReader(brokers, groupID, topic),
		transfers: transfers,
		logger:    logger.With("consumer", "dlq-recovery", "topic", topic),
	}
}

// Run consumes until ctx is canceled. Every message is committed regardless
// of outcome.
func (w *RecoveryWorker) Run(ctx context.Context) {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if isContextCanceled(err) {
				return
			}
			w.logger.Error("fetch failed", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		w.process(ctx, msg)

		if err := w.reader.CommitMessages(ctx, msg); err != nil && !isContextCanceled(err) {
			w.logger.Error("commit failed", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// Close releases the underlying reader.
func (w *RecoveryWorker) Close() error {
	return w.reader.Close()
}

func (w *RecoveryWorker) process(ctx context.Context, msg kafka.Message) {
	cmd := headerValue(msg, HeaderCmd)
	if cmd != CmdCompensate {
		w.logger.Warn("ignoring non-compensate dead letter", "cmd", cmd)
		return
	}

	var req dto.CompensateRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		w.logger.Error("MANUAL INTERVENTION REQUIRED: undecodable dead letter",
			"value", string(msg.Value), "error", err)
		return
	}

	w.logger.Info("dead-letter compensation started", "transaction_id", req.TransactionID)
	if err := w.transfers.Compensate(ctx, transfer.CompensateCommand{TransactionID: req.TransactionID}); err != nil {
		w.logger.Error("MANUAL INTERVENTION REQUIRED: dead-letter compensation failed",
			"transaction_id", req.TransactionID, "value", string(msg.Value), "error", err)
		return
	}
	w.logger.Info("dead-letter compensation completed", "transaction_id", req.TransactionID)
}
