// Command transfer_smoketest verifies the request/reply channel end to end
// against a local broker: it produces a request.withdraw message with the
// saga headers and waits for the correlated reply. Run it with the server up.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/minwoo-song/bankcore/infra/messaging"
	"github.com/minwoo-song/bankcore/pkg/dto"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	requestTopic := strings.TrimSpace(os.Getenv("REQUEST_TOPIC"))
	if requestTopic == "" {
		requestTopic = "bank.transfer.request"
	}
	replyTopic := strings.TrimSpace(os.Getenv("REPLY_TOPIC"))
	if replyTopic == "" {
		replyTopic = "bank.transfer.reply.smoketest"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	brokerList := messaging.ParseBrokers(brokers)
	correlationID := uuid.NewString()

	payload, err := json.Marshal(dto.WithdrawRequest{
		TransactionID:    uuid.NewString(),
		WithdrawBankCode: "SSOK_BANK",
		WithdrawAccount:  os.Getenv("SMOKETEST_ACCOUNT"),
		TransferAmount:   1,
		CurrencyCode:     "WON",
		CounterAccount:   os.Getenv("SMOKETEST_COUNTER_ACCOUNT"),
		CounterBankCode:  "KAKAO_BANK",
	})
	if err != nil {
		logger.Error("marshal failed", "error", err)
		return err
	}

	w := messaging.NewWriter(brokerList)
	defer func() { _ = w.Close() }()

	err = w.WriteMessages(ctx, kafka.Message{
		Topic: requestTopic,
		Key:   []byte(correlationID),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: messaging.HeaderCmd, Value: []byte(messaging.CmdWithdraw)},
			{Key: messaging.HeaderReplyTopic, Value: []byte(replyTopic)},
			{Key: messaging.HeaderCorrelationID, Value: []byte(correlationID)},
		},
	})
	if err != nil {
		logger.Error("write failed", "topic", requestTopic, "error", err)
		return err
	}
	logger.Info("request produced", "topic", requestTopic, "correlation_id", correlationID)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokerList,
		GroupID:     "transfer-smoketest",
		Topic:       replyTopic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = r.Close() }()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			logger.Error("no reply received", "topic", replyTopic, "error", err)
			return err
		}
		if got := headerValue(msg, messaging.HeaderCorrelationID); got != correlationID {
			logger.Info("skipping unrelated reply", "correlation_id", got)
			continue
		}

		var reply dto.Reply
		if err := json.Unmarshal(msg.Value, &reply); err != nil {
			logger.Error("undecodable reply", "value", string(msg.Value), "error", err)
			return err
		}
		logger.Info("reply received",
			"is_success", reply.IsSuccess, "code", reply.Code, "message", reply.Message)
		return nil
	}
}

func headerValue(msg kafka.Message, name string) string {
	for _, h := range msg.Headers {
		if h.Key == name {
			return string(h.Value)
		}
	}
	return ""
}
