package api

import (
	"fmt"
	"net/http"

	"auction-service/internal/invoice"
	"auction-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func auctionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation_failed",
			"error": "Invalid auction ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// createAuction handles listing creation
func (h *Handler) createAuction(c *gin.Context) {
	var req service.CreateAuctionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation_failed",
			"error": err.Error(),
		})
		return
	}

	auction, err := h.auctionService.CreateAuction(c.Request.Context(), currentUser(c).ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"auction": auction})
}

// listAuctions returns all listings
func (h *Handler) listAuctions(c *gin.Context) {
	auctions, err := h.auctionService.ListAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions})
}

// myAuctions returns the caller's listings
func (h *Handler) myAuctions(c *gin.Context) {
	auctions, err := h.auctionService.ListMyAuctions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions})
}

// getAuction returns one listing with its highest bid and winner details
func (h *Handler) getAuction(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	detail, err := h.auctionService.GetAuctionDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auction": detail})
}

// updateAuction revises listing terms
func (h *Handler) updateAuction(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	var req service.CreateAuctionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation_failed",
			"error": err.Error(),
		})
		return
	}

	auction, err := h.auctionService.UpdateAuction(c.Request.Context(), currentUser(c).ID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auction": auction})
}

// deleteAuction removes a listing
func (h *Handler) deleteAuction(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	if err := h.auctionService.DeleteAuction(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction deleted"})
}

// placeBid submits a bid
func (h *Handler) placeBid(c *gin.Context) {
	var req service.PlaceBidRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation_failed",
			"error": "amount must be greater than 0",
		})
		return
	}

	leader, auction, err := h.bidService.PlaceBid(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leader": leader, "auction": auction})
}

// leader returns the current highest bid snapshot
func (h *Handler) leader(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	snapshot, err := h.bidService.Leader(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leader": snapshot})
}

// bids returns the full bid ledger for an auction
func (h *Handler) bids(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	bids, err := h.bidService.Bids(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// acceptBid lets the seller accept the highest bid
func (h *Handler) acceptBid(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	highest, err := h.negotiationService.AcceptBid(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Bid accepted",
		"winner":  gin.H{"id": highest.BidderID, "name": highest.BidderName},
		"amount":  highest.Amount,
	})
}

// rejectBid lets the seller reject the highest bid
func (h *Handler) rejectBid(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	if err := h.negotiationService.RejectBid(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bid rejected"})
}

type counterOfferRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// counterOffer lets the seller counter the highest bid
func (h *Handler) counterOffer(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	var req counterOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "validation_failed",
			"error": "amount must be greater than 0",
		})
		return
	}

	if err := h.negotiationService.CounterOffer(c.Request.Context(), currentUser(c).ID, id, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Counter-offer sent", "amount": req.Amount})
}

type counterResponseRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// counterResponse lets the highest bidder answer a counter-offer
func (h *Handler) counterResponse(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	var req counterResponseRequest
	if !bindJSON(c, &req) {
		return
	}

	finalPrice, err := h.negotiationService.CounterResponse(c.Request.Context(), currentUser(c).ID, id, *req.Accept)
	if err != nil {
		respondError(c, err)
		return
	}

	if *req.Accept {
		c.JSON(http.StatusOK, gin.H{"message": "Counter-offer accepted", "final_price": finalPrice})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Counter-offer rejected"})
}

// invoice renders the sale invoice PDF
func (h *Handler) invoice(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	data, err := h.auctionService.InvoiceData(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := invoice.Generate(*data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
