// Package events implements the portal's fan-out notification bus: an
// in-process room broker feeding websocket subscribers, with optional Redis
// and NATS relays so events reach subscribers on other nodes. Publishing is
// best-effort; a failed relay never fails the operation that triggered it.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campushire/placement-api/internal/observability"
)

const subscriberBufferSize = 16

// Event names emitted by the placement core.
const (
	DriveCreated            = "drive_created"
	DriveUpdated            = "drive_updated"
	DriveDeleted            = "drive_deleted"
	ApplicationSubmitted    = "application_submitted"
	RoundStatusUpdated      = "round_status_updated"
	StudentsSelected        = "students_selected"
	SelectionRoundsAdded    = "selection_rounds_added"
	PlacementFinalized      = "placement_finalized"
	DeletionRequestCreated  = "deletion_request_created"
	DeletionRequestApproved = "deletion_request_approved"
	DeletionRequestRejected = "deletion_request_rejected"
)

// Delivery rooms.
const (
	RoomBroadcast       = "broadcast"
	RoomOfficers        = "role:placement_officer"
	RoomRepresentatives = "role:placement_representative"
)

// UserRoom names the private room for one user.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Event is a named, timestamped notification routed to one room.
type Event struct {
	Name    string                 `json:"name"`
	Room    string                 `json:"room"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	At      time.Time              `json:"at"`
}

// Publisher is the write side of the bus consumed by the services.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type envelope struct {
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

type roomBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// Bus fans events out to local subscribers and relays them across nodes.
type Bus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
	broker       *roomBroker
	nodeID       string
}

// New builds a bus. Both the Redis client and the NATS connection are
// optional; with neither, events stay node-local.
func New(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Bus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &Bus{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_bus").Logger(),
		tracer:       otel.Tracer("github.com/campushire/placement-api/internal/events"),
		broker: &roomBroker{
			subscribers: make(map[string]map[chan Event]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

// Start launches the cross-node relay consumers.
func (b *Bus) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		b.consumeNATS(ctx)
	}
}

// Publish delivers the event to local subscribers and relays it to the other
// nodes. Failures are logged and swallowed: emitting an event must never fail
// the write that produced it.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if event.Room == "" {
		event.Room = RoomBroadcast
	}

	_, span := b.tracer.Start(ctx, "events.publish", trace.WithAttributes(
		attribute.String("event.name", event.Name),
		attribute.String("event.room", event.Room),
	))
	defer span.End()

	b.broker.deliver(event)
	observability.EventsPublished().WithLabelValues(event.Name).Inc()

	if err := b.relay(ctx, event); err != nil {
		span.RecordError(err)
		b.logger.Warn().Err(err).Str("event", event.Name).Msg("failed to relay event")
	}
}

// Subscribe registers a consumer for the given rooms. The returned cleanup
// must be called when the consumer goes away.
func (b *Bus) Subscribe(rooms ...string) (<-chan Event, func()) {
	channel := make(chan Event, subscriberBufferSize)

	for _, room := range rooms {
		b.broker.subscribe(room, channel)
	}
	observability.EventSubscribers().Inc()

	cleanup := func() {
		for _, room := range rooms {
			b.broker.unsubscribe(room, channel)
		}
		observability.EventSubscribers().Dec()
	}

	return channel, cleanup
}

func (b *Bus) relay(ctx context.Context, event Event) error {
	if (b.redis == nil || b.redisChannel == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(envelope{Source: b.nodeID, Event: event})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bus) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		b.handleRemote([]byte(msg.Payload))
	}
}

func (b *Bus) consumeNATS(ctx context.Context) {
	sub, err := b.nats.QueueSubscribe(b.natsSubject, "placement-events", func(msg *nats.Msg) {
		b.handleRemote(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain nats event subscription")
		}
	}()
}

func (b *Bus) handleRemote(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn().Err(err).Msg("invalid event envelope")
		return
	}

	if env.Source == b.nodeID {
		return
	}
	if env.Event.Room == "" {
		env.Event.Room = RoomBroadcast
	}

	b.broker.deliver(env.Event)
}

func (r *roomBroker) subscribe(room string, channel chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listeners, ok := r.subscribers[room]
	if !ok {
		listeners = make(map[chan Event]struct{})
		r.subscribers[room] = listeners
	}
	listeners[channel] = struct{}{}
}

func (r *roomBroker) unsubscribe(room string, channel chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listeners, ok := r.subscribers[room]; ok {
		delete(listeners, channel)
		if len(listeners) == 0 {
			delete(r.subscribers, room)
		}
	}
}

func (r *roomBroker) deliver(event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for channel := range r.subscribers[event.Room] {
		select {
		case channel <- event:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
}
