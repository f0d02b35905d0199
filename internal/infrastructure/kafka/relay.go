package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	peerKafka     = "kafka"
	headerEvent   = "event"
	DefaultTopic  = "order-outcomes"
	writeDeadline = 5 * time.Second
)

// Writer is the part of *kafka.Writer the relay depends on.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	var brokers []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Relay forwards order outcome events to a Kafka topic, keyed by order id so
// all messages of one order land on the same partition.
type Relay struct {
	writer     Writer
	subscriber domoutbox.Subscriber

	log          observability.Logger
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewRelay(writer Writer, subscriber domoutbox.Subscriber, tel observability.Observability) *Relay {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Relay{
		writer:       writer,
		subscriber:   subscriber,
		log:          tel.Logger().With(observability.F("component", "kafka_relay")),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

func (r *Relay) Start() {
	if r.writer == nil || r.subscriber == nil {
		return
	}
	r.subscriber.Subscribe(domain.EventOrderPlaced, r.forward)
	r.subscriber.Subscribe(domain.EventOrderPaymentFailed, r.forward)
}

func (r *Relay) Close() error {
	if r.writer == nil {
		return nil
	}
	return r.writer.Close()
}

func (r *Relay) forward(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.OutcomeEvent)
	if !ok {
		return nil
	}
	logger := logctx.FromOr(ctx, r.log).With(observability.F("order_id", evt.OrderID))

	msg, err := message(ctx, evt)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, writeDeadline)
	defer cancel()

	start := time.Now()
	err = r.writer.WriteMessages(wctx, msg)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.extCounter.Add(1,
		observability.L("peer", peerKafka),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", outcome),
	)
	r.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerKafka),
		observability.L("endpoint", e.EventName()),
	)
	if err != nil {
		logger.Warn("kafka_relay_failed", observability.F("error", err))
		return fmt.Errorf("kafka relay: %w", err)
	}
	logger.Debug("kafka_relayed")
	return nil
}

func message(ctx context.Context, evt domain.OutcomeEvent) (kafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka relay: encode: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: headerEvent, Value: []byte(evt.EventName())}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return kafka.Message{
		Key:     []byte(strconv.FormatInt(evt.OrderID, 10)),
		Value:   payload,
		Headers: headers,
		Time:    evt.OccurredAt,
	}, nil
}
