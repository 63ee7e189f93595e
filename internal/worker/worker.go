package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-service/internal/auctionerrors"
	"auction-service/internal/broker"
	"auction-service/internal/invoice"
	"auction-service/internal/models"
	"auction-service/internal/notifier"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Datastore is the storage surface the worker needs
type Datastore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
	GetAuctionByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetHighestBid(ctx context.Context, auctionID uuid.UUID) (*models.BidWithBidder, error)
}

// NotificationWorker consumes room events and delivers the email side
// effects out of the request path. State transitions have already committed
// by the time an event arrives here; email failures are logged, never
// propagated back.
type NotificationWorker struct {
	consumer *broker.Consumer
	handler  *broker.EventHandler
	store    Datastore
	sender   notifier.Sender
	logger   *zap.Logger
}

// NewNotificationWorker creates a notification worker
func NewNotificationWorker(consumer *broker.Consumer, store Datastore, sender notifier.Sender) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		handler:  broker.NewEventHandler(),
		store:    store,
		sender:   sender,
		logger:   util.GetLogger(),
	}

	w.handler.OnBidAccepted(w.handleBidAccepted)
	w.handler.OnBidRejected(w.handleBidRejected)
	w.handler.OnCounterOffer(w.handleCounterOffer)
	w.handler.OnCounterAccepted(w.handleCounterAccepted)
	w.handler.OnCounterRejected(w.handleCounterRejected)

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.handler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) send(ctx context.Context, kind string, msg *notifier.Message) {
	if err := w.sender.Send(ctx, msg); err != nil {
		util.NotificationsSentTotal.WithLabelValues(kind, "failure").Inc()
		w.logger.Error("Failed to send notification",
			zap.String("kind", kind),
			zap.String("to", msg.ToEmail),
			zap.Error(err))
		return
	}
	util.NotificationsSentTotal.WithLabelValues(kind, "success").Inc()
}

// saleParties loads the auction plus both sides of a finalized sale
func (w *NotificationWorker) saleParties(ctx context.Context, auctionID, winnerID uuid.UUID) (*models.Auction, *models.User, *models.User, error) {
	auction, err := w.store.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, nil, nil, err
	}
	seller, err := w.store.GetUserByID(ctx, auction.SellerID)
	if err != nil {
		return nil, nil, nil, err
	}
	buyer, err := w.store.GetUserByID(ctx, winnerID)
	if err != nil {
		return nil, nil, nil, err
	}
	return auction, seller, buyer, nil
}

func (w *NotificationWorker) handleBidAccepted(ctx context.Context, event *models.BidAcceptedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	auction, seller, buyer, err := w.saleParties(ctx, event.AuctionID, event.WinnerID)
	if err != nil {
		return err
	}

	pdf, err := invoice.Generate(invoice.Data{
		AuctionID:   auction.ID,
		ItemName:    auction.ItemName,
		FinalPrice:  event.Amount,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
		Date:        time.Now(),
	})
	if err != nil {
		w.logger.Error("Failed to generate invoice", zap.Error(err))
	}

	attachments := invoiceAttachment(auction.ID, pdf)
	w.send(ctx, "bid_accepted", &notifier.Message{
		ToName:  buyer.Name,
		ToEmail: buyer.Email,
		Subject: "Your bid has been accepted!",
		Body: fmt.Sprintf("Congratulations! Your bid of %s for %q has been accepted.",
			event.Amount.StringFixed(2), auction.ItemName),
		Attachments: attachments,
	})
	w.send(ctx, "bid_accepted", &notifier.Message{
		ToName:  seller.Name,
		ToEmail: seller.Email,
		Subject: "Sale completed",
		Body: fmt.Sprintf("You accepted the bid of %s for %q by %s.",
			event.Amount.StringFixed(2), auction.ItemName, buyer.Name),
		Attachments: attachments,
	})

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleBidRejected(ctx context.Context, event *models.BidRejectedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	auction, err := w.store.GetAuctionByID(ctx, event.AuctionID)
	if err != nil {
		return err
	}
	seller, err := w.store.GetUserByID(ctx, auction.SellerID)
	if err != nil {
		return err
	}

	highest, err := w.store.GetHighestBid(ctx, event.AuctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return err
	}
	if highest != nil {
		w.send(ctx, "bid_rejected", &notifier.Message{
			ToName:  highest.BidderName,
			ToEmail: highest.BidderEmail,
			Subject: "Your bid was rejected",
			Body: fmt.Sprintf("Sorry, your bid of %s for %q was rejected by the seller.",
				highest.Amount.StringFixed(2), auction.ItemName),
		})
	}
	w.send(ctx, "bid_rejected", &notifier.Message{
		ToName:  seller.Name,
		ToEmail: seller.Email,
		Subject: "Bid rejected",
		Body:    fmt.Sprintf("You rejected the highest bid for %q.", auction.ItemName),
	})

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleCounterOffer(ctx context.Context, event *models.CounterOfferEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	auction, err := w.store.GetAuctionByID(ctx, event.AuctionID)
	if err != nil {
		return err
	}
	seller, err := w.store.GetUserByID(ctx, auction.SellerID)
	if err != nil {
		return err
	}
	bidder, err := w.store.GetUserByID(ctx, event.BidderID)
	if err != nil {
		return err
	}

	w.send(ctx, "counter_offer", &notifier.Message{
		ToName:  bidder.Name,
		ToEmail: bidder.Email,
		Subject: "Seller sent a counter-offer",
		Body: fmt.Sprintf("The seller has sent a counter-offer of %s for %q.",
			event.Amount.StringFixed(2), auction.ItemName),
	})
	w.send(ctx, "counter_offer", &notifier.Message{
		ToName:  seller.Name,
		ToEmail: seller.Email,
		Subject: "Counter-offer sent",
		Body: fmt.Sprintf("Your counter-offer of %s for %q was sent to %s.",
			event.Amount.StringFixed(2), auction.ItemName, bidder.Name),
	})

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleCounterAccepted(ctx context.Context, event *models.CounterAcceptedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	auction, seller, buyer, err := w.saleParties(ctx, event.AuctionID, event.WinnerID)
	if err != nil {
		return err
	}

	pdf, err := invoice.Generate(invoice.Data{
		AuctionID:   auction.ID,
		ItemName:    auction.ItemName,
		FinalPrice:  event.Amount,
		SellerName:  seller.Name,
		SellerEmail: seller.Email,
		BuyerName:   buyer.Name,
		BuyerEmail:  buyer.Email,
		Date:        time.Now(),
	})
	if err != nil {
		w.logger.Error("Failed to generate invoice", zap.Error(err))
	}

	attachments := invoiceAttachment(auction.ID, pdf)
	w.send(ctx, "counter_accepted", &notifier.Message{
		ToName:  seller.Name,
		ToEmail: seller.Email,
		Subject: "Counter-offer accepted!",
		Body: fmt.Sprintf("Good news! Your counter-offer of %s for %q has been accepted by %s.",
			event.Amount.StringFixed(2), auction.ItemName, buyer.Name),
		Attachments: attachments,
	})
	w.send(ctx, "counter_accepted", &notifier.Message{
		ToName:  buyer.Name,
		ToEmail: buyer.Email,
		Subject: "Purchase confirmed",
		Body: fmt.Sprintf("You accepted the counter-offer of %s for %q.",
			event.Amount.StringFixed(2), auction.ItemName),
		Attachments: attachments,
	})

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func (w *NotificationWorker) handleCounterRejected(ctx context.Context, event *models.CounterRejectedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		return nil
	}

	auction, err := w.store.GetAuctionByID(ctx, event.AuctionID)
	if err != nil {
		return err
	}
	seller, err := w.store.GetUserByID(ctx, auction.SellerID)
	if err != nil {
		return err
	}

	w.send(ctx, "counter_rejected", &notifier.Message{
		ToName:  seller.Name,
		ToEmail: seller.Email,
		Subject: "Counter-offer rejected",
		Body: fmt.Sprintf("Unfortunately, your counter-offer for %q was rejected.",
			auction.ItemName),
	})

	highest, err := w.store.GetHighestBid(ctx, event.AuctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return err
	}
	if highest != nil {
		w.send(ctx, "counter_rejected", &notifier.Message{
			ToName:  highest.BidderName,
			ToEmail: highest.BidderEmail,
			Subject: "Counter-offer declined",
			Body:    fmt.Sprintf("You declined the seller's counter-offer for %q.", auction.ItemName),
		})
	}

	return w.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}

func invoiceAttachment(auctionID uuid.UUID, pdf []byte) []notifier.Attachment {
	if len(pdf) == 0 {
		return nil
	}
	return []notifier.Attachment{{
		Filename:    fmt.Sprintf("invoice-%s.pdf", auctionID),
		ContentType: "application/pdf",
		Data:        pdf,
	}}
}
