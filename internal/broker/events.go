package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"auction-service/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

func roomKey(auctionID uuid.UUID) string {
	return fmt.Sprintf("auction-%s", auctionID)
}

// RoomPublisher pushes the fixed set of room events onto the auction topic.
// It satisfies the service layer's publish interface; the live transport is
// whatever subscribes to the topic.
type RoomPublisher struct {
	producer *Producer
}

// NewRoomPublisher creates a new room event publisher
func NewRoomPublisher(producer *Producer) *RoomPublisher {
	return &RoomPublisher{producer: producer}
}

// PublishBidUpdated publishes a bidUpdated event to the auction's room
func (rp *RoomPublisher) PublishBidUpdated(ctx context.Context, event *models.BidUpdatedEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// PublishBidAccepted publishes a bidAccepted event
func (rp *RoomPublisher) PublishBidAccepted(ctx context.Context, event *models.BidAcceptedEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// PublishBidRejected publishes a bidRejected event
func (rp *RoomPublisher) PublishBidRejected(ctx context.Context, event *models.BidRejectedEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// PublishCounterOffer publishes a counterOffer event
func (rp *RoomPublisher) PublishCounterOffer(ctx context.Context, event *models.CounterOfferEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// PublishCounterAccepted publishes a counterAccepted event
func (rp *RoomPublisher) PublishCounterAccepted(ctx context.Context, event *models.CounterAcceptedEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// PublishCounterRejected publishes a counterRejected event
func (rp *RoomPublisher) PublishCounterRejected(ctx context.Context, event *models.CounterRejectedEvent) error {
	return rp.producer.PublishEvent(ctx, roomKey(event.AuctionID), event)
}

// EventHandler routes consumed room events to registered callbacks
type EventHandler struct {
	onBidUpdated      func(context.Context, *models.BidUpdatedEvent) error
	onBidAccepted     func(context.Context, *models.BidAcceptedEvent) error
	onBidRejected     func(context.Context, *models.BidRejectedEvent) error
	onCounterOffer    func(context.Context, *models.CounterOfferEvent) error
	onCounterAccepted func(context.Context, *models.CounterAcceptedEvent) error
	onCounterRejected func(context.Context, *models.CounterRejectedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnBidUpdated registers a handler for bidUpdated events
func (eh *EventHandler) OnBidUpdated(handler func(context.Context, *models.BidUpdatedEvent) error) {
	eh.onBidUpdated = handler
}

// OnBidAccepted registers a handler for bidAccepted events
func (eh *EventHandler) OnBidAccepted(handler func(context.Context, *models.BidAcceptedEvent) error) {
	eh.onBidAccepted = handler
}

// OnBidRejected registers a handler for bidRejected events
func (eh *EventHandler) OnBidRejected(handler func(context.Context, *models.BidRejectedEvent) error) {
	eh.onBidRejected = handler
}

// OnCounterOffer registers a handler for counterOffer events
func (eh *EventHandler) OnCounterOffer(handler func(context.Context, *models.CounterOfferEvent) error) {
	eh.onCounterOffer = handler
}

// OnCounterAccepted registers a handler for counterAccepted events
func (eh *EventHandler) OnCounterAccepted(handler func(context.Context, *models.CounterAcceptedEvent) error) {
	eh.onCounterAccepted = handler
}

// OnCounterRejected registers a handler for counterRejected events
func (eh *EventHandler) OnCounterRejected(handler func(context.Context, *models.CounterRejectedEvent) error) {
	eh.onCounterRejected = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeBidUpdated:
		if eh.onBidUpdated != nil {
			var event models.BidUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal bidUpdated event: %w", err)
			}
			return eh.onBidUpdated(ctx, &event)
		}

	case models.EventTypeBidAccepted:
		if eh.onBidAccepted != nil {
			var event models.BidAcceptedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal bidAccepted event: %w", err)
			}
			return eh.onBidAccepted(ctx, &event)
		}

	case models.EventTypeBidRejected:
		if eh.onBidRejected != nil {
			var event models.BidRejectedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal bidRejected event: %w", err)
			}
			return eh.onBidRejected(ctx, &event)
		}

	case models.EventTypeCounterOffer:
		if eh.onCounterOffer != nil {
			var event models.CounterOfferEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal counterOffer event: %w", err)
			}
			return eh.onCounterOffer(ctx, &event)
		}

	case models.EventTypeCounterAccepted:
		if eh.onCounterAccepted != nil {
			var event models.CounterAcceptedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal counterAccepted event: %w", err)
			}
			return eh.onCounterAccepted(ctx, &event)
		}

	case models.EventTypeCounterRejected:
		if eh.onCounterRejected != nil {
			var event models.CounterRejectedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal counterRejected event: %w", err)
			}
			return eh.onCounterRejected(ctx, &event)
		}
	}

	return nil
}
