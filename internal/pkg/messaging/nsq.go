package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/nsqio/go-nsq"
)

// ErrNSQAddressRequired is returned when the nsqd address is empty.
var ErrNSQAddressRequired = errors.New("messaging: nsqd address is required")

// NSQConfig configures the NSQ implementation.
type NSQConfig struct {
	// Address is the nsqd TCP address, for example "127.0.0.1:4150".
	Address string

	// Config holds go-nsq producer options. Nil uses nsq.NewConfig().
	Config *nsq.Config
}

// NSQ is a Publisher backed by a go-nsq producer.
type NSQ struct {
	producer *nsq.Producer
}

// NewNSQ constructs an NSQ publisher and verifies nsqd is reachable.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.Address == "" {
		return nil, ErrNSQAddressRequired
	}

	nc := cfg.Config
	if nc == nil {
		nc = nsq.NewConfig()
	}

	producer, err := nsq.NewProducer(cfg.Address, nc)
	if err != nil {
		return nil, err
	}
	producer.SetLoggerLevel(nsq.LogLevelError)

	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, err
	}

	return &NSQ{producer: producer}, nil
}

// Close stops the producer and waits for in-flight publishes.
func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}

// Publish sends a message to an NSQ topic. NSQ has no native headers or
// keys, so only the body is delivered.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, errors.New("messaging: nsq topic is required")
	}

	if err := n.producer.Publish(destination, msg.Body); err != nil {
		return PublishResult{}, err
	}

	return PublishResult{
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}
