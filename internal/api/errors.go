package api

import (
	"errors"
	"net/http"

	"auction-service/internal/auctionerrors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// fieldError is one itemized validation failure, mirroring what the client
// form needs to highlight.
type fieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// bindJSON binds and, on validation failure, writes the itemized per-field
// error list. Returns false when the request has already been answered.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]fieldError, 0, len(vErrs))
		for _, fe := range vErrs {
			fields = append(fields, fieldError{
				Path:    fe.Field(),
				Message: validationMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{"kind": "validation_failed", "errors": fields})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"kind":  "validation_failed",
		"error": "Invalid request body",
	})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}

// respondError maps core errors onto distinct, machine-checkable kinds.
// State-mismatch and identity-mismatch stay distinguishable.
func respondError(c *gin.Context, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound),
		errors.Is(err, auctionerrors.ErrUserNotFound),
		errors.Is(err, auctionerrors.ErrBidNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, auctionerrors.ErrNotOwner):
		status, kind = http.StatusForbidden, "not_owner"
	case errors.Is(err, auctionerrors.ErrNotEligible):
		status, kind = http.StatusForbidden, "not_eligible"
	case errors.Is(err, auctionerrors.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, auctionerrors.ErrInvalidState):
		status, kind = http.StatusConflict, "invalid_state"
	case errors.Is(err, auctionerrors.ErrAuctionHasBids):
		status, kind = http.StatusConflict, "auction_has_bids"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		status, kind = http.StatusBadRequest, "bid_too_low"
	case errors.Is(err, auctionerrors.ErrCounterTooLow):
		status, kind = http.StatusBadRequest, "counter_too_low"
	case errors.Is(err, auctionerrors.ErrAuctionNotStarted):
		status, kind = http.StatusBadRequest, "not_started"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		status, kind = http.StatusBadRequest, "ended"
	case errors.Is(err, auctionerrors.ErrNoBids):
		status, kind = http.StatusBadRequest, "no_bids"
	case errors.Is(err, auctionerrors.ErrEmailTaken):
		status, kind = http.StatusBadRequest, "email_taken"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		status, kind = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, auctionerrors.ErrInvoiceUnavailable):
		status, kind = http.StatusBadRequest, "invoice_unavailable"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}

	c.JSON(status, gin.H{"kind": kind, "error": err.Error()})
}
