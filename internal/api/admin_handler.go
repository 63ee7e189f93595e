package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminStats returns dashboard aggregates
func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// adminAuctions returns every listing
func (h *Handler) adminAuctions(c *gin.Context) {
	auctions, err := h.adminService.ListAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions})
}

// adminUsers returns every account
func (h *Handler) adminUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// adminStartAuction forces a listing live immediately
func (h *Handler) adminStartAuction(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	if err := h.adminService.StartAuction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction started"})
}

// adminResetAuction wipes bids and negotiation state for a listing
func (h *Handler) adminResetAuction(c *gin.Context) {
	id, ok := auctionIDParam(c)
	if !ok {
		return
	}

	if err := h.adminService.ResetAuction(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Auction reset"})
}
