package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nkeys"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// MetadataTopic carries the destination topic of a message produced by a
// handler that was registered without a fixed publish topic.
const MetadataTopic = "topic"

// ErrNoTopic is returned when a message has neither an explicit topic nor a
// topic in its metadata.
var ErrNoTopic = errors.New("message has no destination topic")

// EventBus is the publish/subscribe surface the modules depend on.
type EventBus interface {
	message.Publisher
	message.Subscriber

	// CreateStream makes sure a stream covering subjects exists.
	CreateStream(ctx context.Context, streamName string, subjects ...string) error
}

// Config holds the NATS connection settings.
type Config struct {
	URL string

	// NKeySeed authenticates the connection when set.
	NKeySeed string

	// DurablePrefix names the JetStream consumers of this service.
	DurablePrefix string
}

// natsEventBus implements EventBus on NATS JetStream.
type natsEventBus struct {
	publisher      message.Publisher
	subscriber     message.Subscriber
	js             jetstream.JetStream
	natsConn       *nc.Conn
	logger         *slog.Logger
	createdStreams map[string]bool
	streamMutex    sync.Mutex
}

// NewEventBus creates and returns an EventBus with a connection to NATS JetStream.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	options := []nc.Option{
		nc.Name("envsim"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}
	if cfg.NKeySeed != "" {
		opt, err := nkeyOption(cfg.NKeySeed)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}

	natsConn, err := nc.Connect(cfg.URL, options...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		logger.ErrorContext(ctx, "Failed to initialize JetStream", slog.Any("error", err))
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: false,
		DurablePrefix: cfg.DurablePrefix,
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			NatsOptions:      options,
			Unmarshaler:      marshaler,
			QueueGroupPrefix: cfg.DurablePrefix,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			JetStream:        jsConfig,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &natsEventBus{
		publisher:      publisher,
		subscriber:     subscriber,
		js:             js,
		natsConn:       natsConn,
		logger:         logger,
		createdStreams: make(map[string]bool),
	}, nil
}

// nkeyOption signs the server nonce with the user key derived from seed.
func nkeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive NATS public key: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}

func (eb *natsEventBus) Publish(topic string, messages ...*message.Message) error {
	return publishRouted(eb.publisher, topic, messages)
}

func (eb *natsEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.InfoContext(ctx, "Subscribing to subject", slog.String("subject", topic))
	return eb.subscriber.Subscribe(ctx, topic)
}

func (eb *natsEventBus) CreateStream(ctx context.Context, streamName string, subjects ...string) error {
	eb.streamMutex.Lock()
	defer eb.streamMutex.Unlock()

	if eb.createdStreams[streamName] {
		return nil
	}

	stream, err := eb.js.Stream(ctx, streamName)
	if err != nil && !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to check if stream exists: %w", err)
	}

	if errors.Is(err, jetstream.ErrStreamNotFound) {
		_, err = eb.js.CreateStream(ctx, jetstream.StreamConfig{
			Name:      streamName,
			Subjects:  subjects,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    7 * 24 * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
		eb.logger.InfoContext(ctx, "Stream created", slog.String("stream_name", streamName), slog.Any("subjects", subjects))
	} else {
		info, err := stream.Info(ctx)
		if err != nil {
			return fmt.Errorf("failed to get stream info: %w", err)
		}

		missing := false
		existing := make(map[string]bool, len(info.Config.Subjects))
		for _, s := range info.Config.Subjects {
			existing[s] = true
		}
		for _, s := range subjects {
			if !existing[s] {
				info.Config.Subjects = append(info.Config.Subjects, s)
				missing = true
			}
		}

		if missing {
			if _, err := eb.js.UpdateStream(ctx, info.Config); err != nil {
				return fmt.Errorf("failed to update stream with new subjects: %w", err)
			}
			eb.logger.InfoContext(ctx, "Stream updated with new subjects", slog.String("stream_name", streamName))
		}
	}

	eb.createdStreams[streamName] = true
	return nil
}

func (eb *natsEventBus) Close() error {
	var errs []error
	if err := eb.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	if err := eb.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	eb.natsConn.Close()
	return errors.Join(errs...)
}

// memoryEventBus implements EventBus on an in-process go channel pub/sub.
type memoryEventBus struct {
	pubsub *gochannel.GoChannel
}

// NewInMemoryEventBus returns an EventBus that never leaves the process. Used
// when no NATS URL is configured and in tests.
func NewInMemoryEventBus(logger *slog.Logger) EventBus {
	return &memoryEventBus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NewSlogLogger(logger)),
	}
}

func (b *memoryEventBus) Publish(topic string, messages ...*message.Message) error {
	return publishRouted(b.pubsub, topic, messages)
}

func (b *memoryEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *memoryEventBus) CreateStream(context.Context, string, ...string) error { return nil }

func (b *memoryEventBus) Close() error { return b.pubsub.Close() }

// publishRouted publishes to topic, or to each message's metadata topic when
// topic is empty.
func publishRouted(pub message.Publisher, topic string, messages []*message.Message) error {
	if topic != "" {
		return pub.Publish(topic, messages...)
	}
	for _, msg := range messages {
		dest := msg.Metadata.Get(MetadataTopic)
		if dest == "" {
			return fmt.Errorf("%w: message %s", ErrNoTopic, msg.UUID)
		}
		if err := pub.Publish(dest, msg); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", dest, err)
		}
	}
	return nil
}
