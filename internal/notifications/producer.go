package notifications

import (
	"context"
	"fmt"
	"time"

	"boleteria/internal/purchase"
	"boleteria/pkg/logger"

	"github.com/IBM/sarama"
)

// ProducerConfig contains configuration for the Kafka sale-event producer.
type ProducerConfig struct {
	Brokers          []string
	SalesTopic       string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultProducerConfig returns a default producer configuration.
func DefaultProducerConfig() *ProducerConfig {
	return &ProducerConfig{
		Brokers:          []string{"localhost:9092"},
		SalesTopic:       "sales-completed",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// SaleEventProducer publishes completed sales to Kafka. It satisfies the
// purchase coordinator's publisher contract; failures are the caller's to
// log, never to propagate to the buyer.
type SaleEventProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

func NewSaleEventProducer(config *ProducerConfig) (*SaleEventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &SaleEventProducer{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

// PublishSaleCompleted publishes one completed sale.
func (p *SaleEventProducer) PublishSaleCompleted(ctx context.Context, sale *purchase.Sale, seats []purchase.SelectedSeat) error {
	event := &SaleCompletedEvent{
		SaleID:       sale.ID.String(),
		EventID:      sale.EventID.String(),
		UserID:       sale.UserID.String(),
		RemoteSaleID: sale.RemoteSaleID,
		SaleDate:     sale.SaleDate,
		TotalPrice:   sale.TotalPrice,
		Seats:        make([]SeatInfo, len(seats)),
		PublishedAt:  time.Now(),
	}
	for i, seat := range seats {
		event.Seats[i] = SeatInfo{
			Row:          seat.SeatRow,
			Col:          seat.SeatCol,
			OccupantName: seat.OccupantName,
		}
	}

	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.SalesTopic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: event.PublishedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish sale event: %w", err)
	}

	p.log.InfoContext(ctx, "sale event published",
		"topic", p.config.SalesTopic,
		"partition", partition,
		"offset", offset,
		"sale_id", event.SaleID,
	)
	return nil
}

func (p *SaleEventProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}
