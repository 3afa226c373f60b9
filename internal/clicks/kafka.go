package clicks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader is satisfied by *kafka.Reader in consumer-group mode.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

var (
	_ MessageWriter = (*kafka.Writer)(nil)
	_ MessageReader = (*kafka.Reader)(nil)
)

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
}

// KafkaPublisher emits click events keyed by item name so one item's
// clicks land on one partition.
type KafkaPublisher struct {
	Writer MessageWriter
}

func (p KafkaPublisher) Record(ctx context.Context, ev ClickEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ItemName),
		Value: data,
		Time:  ev.At,
	})
}

// Consumer applies click events from the topic to the store. Offsets are
// committed after the increment succeeds; malformed events are logged and
// committed so they do not block the partition.
type Consumer struct {
	Reader MessageReader
	Store  Counter
	Log    Logger
}

func (c Consumer) Run(ctx context.Context) error {
	if c.Reader == nil || c.Store == nil {
		return errors.New("consumer requires reader and store")
	}

	for {
		if err := c.HandleNext(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// HandleNext fetches, applies and commits one message.
func (c Consumer) HandleNext(ctx context.Context) error {
	msg, err := c.Reader.FetchMessage(ctx)
	if err != nil {
		return err
	}

	var ev ClickEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.logf("click consumer: skipping malformed message at offset %d: %v", msg.Offset, err)
		return c.Reader.CommitMessages(ctx, msg)
	}

	ev = Normalize(ev, msg.Time)
	if err := Validate(ev); err != nil {
		c.logf("click consumer: skipping invalid event at offset %d: %v", msg.Offset, err)
		return c.Reader.CommitMessages(ctx, msg)
	}

	if err := c.Store.IncrementClick(ctx, ev.Key()); err != nil {
		return err
	}

	return c.Reader.CommitMessages(ctx, msg)
}

func (c Consumer) logf(format string, v ...any) {
	if c.Log != nil {
		c.Log.Printf(format, v...)
	}
}
