package feed

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
)

type kafkaBus struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
}

// NewKafka publishes invalidations to a Kafka topic. Each subscriber reads
// with its own throwaway group id so every dashboard node sees every event.
func NewKafka(brokers []string, topic string) Bus {
	if len(brokers) == 0 {
		return NewMemory()
	}
	if topic == "" {
		topic = "pitboss.feed"
	}
	// Writers are safe for concurrent use
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaBus{writer: w, brokers: brokers, topic: topic}
}

func newKafkaFromEnv() Bus {
	bs := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if bs == "" {
		bs = "localhost:9092"
	}
	topic := strings.TrimSpace(os.Getenv("FEED_KAFKA_TOPIC"))
	b := NewKafka(strings.Split(bs, ","), topic)
	log.Printf("[feed] kafka bus enabled: brokers=%s topic=%s", bs, topic)
	return b
}

func (b *kafkaBus) Publish(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return b.writer.WriteMessages(ctx, kafka.Message{Key: []byte(evt.Resource), Value: data})
}

func (b *kafkaBus) Subscribe() (<-chan Event, func(), error) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		Topic:       b.topic,
		GroupID:     "pitboss-feed-" + uuid.NewString(),
		StartOffset: kafka.LastOffset,
	})
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for {
			msg, err := r.ReadMessage(ctx)
			if err != nil {
				return
			}
			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				log.Printf("[feed] drop malformed event: %v", err)
				continue
			}
			select {
			case out <- evt:
			default:
			}
		}
	}()
	stop := func() {
		cancel()
		_ = r.Close()
	}
	return out, stop, nil
}

func (b *kafkaBus) Close() error { return b.writer.Close() }
