package publisher

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"VisionAlertServer/config"
	"VisionAlertServer/logger"
	"VisionAlertServer/pipeline"
)

// Kafka publishes emitted alert events to a topic for caregiver analytics.
// Publish is fire-and-forget: produce errors are counted and logged, never
// surfaced into the request path.
type Kafka struct {
	producer     *kafka.Producer
	topic        string
	deliveryChan chan kafka.Event

	sent   atomic.Int64
	acked  atomic.Int64
	failed atomic.Int64

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewKafka builds a producer from the gated config section.
func NewKafka(cfg config.KafkaConfig) (*Kafka, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"enable.idempotence": true,
		"acks":               "all",
		"compression.type":   "lz4",
		"linger.ms":          20,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	k := &Kafka{
		producer:     p,
		topic:        cfg.Topic,
		deliveryChan: make(chan kafka.Event, 1024),
		ctx:          ctx,
		cancel:       cancel,
	}
	k.wg.Add(1)
	go k.handleDeliveryReports()
	logger.Log().Info("kafka alert publisher initialized",
		zap.String("topic", cfg.Topic),
		zap.String("servers", cfg.BootstrapServers))
	return k, nil
}

func (k *Kafka) handleDeliveryReports() {
	defer k.wg.Done()
	for {
		select {
		case <-k.ctx.Done():
			return
		case e := <-k.deliveryChan:
			m, ok := e.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				k.failed.Add(1)
				logger.S().Errorf("alert delivery failed: %v", m.TopicPartition.Error)
			} else {
				k.acked.Add(1)
			}
		}
	}
}

// Publish implements pipeline.AlertSink.
func (k *Kafka) Publish(event pipeline.AlertEvent) {
	event.EventID = uuid.NewString()
	payload, err := json.Marshal(event)
	if err != nil {
		logger.S().Errorf("serialize alert event: %v", err)
		return
	}
	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Class),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "class", Value: []byte(event.Class)},
			{Key: "position", Value: []byte(event.Position)},
			{Key: "distance", Value: []byte(event.Distance)},
		},
	}
	if err := k.producer.Produce(message, k.deliveryChan); err != nil {
		k.failed.Add(1)
		logger.S().Errorf("produce alert event: %v", err)
		return
	}
	k.sent.Add(1)
}

// Metrics returns produce/ack/fail counts.
func (k *Kafka) Metrics() map[string]int64 {
	return map[string]int64{
		"sent":   k.sent.Load(),
		"acked":  k.acked.Load(),
		"failed": k.failed.Load(),
	}
}

// Close flushes pending events and shuts the producer down.
func (k *Kafka) Close() {
	remaining := k.producer.Flush(int((10 * time.Second).Milliseconds()))
	if remaining > 0 {
		logger.S().Warnf("%d alert events still queued after flush timeout", remaining)
	}
	k.cancel()
	k.wg.Wait()
	k.producer.Close()
}
