package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

type historyResponse struct {
	Level domain.HistoryLevel `json:"level"`
	Rows  any                 `json:"rows"`
}

type latestResponse struct {
	ComputedAt string `json:"computed_at"`
	domain.Report
}

type importRequest struct {
	Path string `json:"path" binding:"required"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type walletAllocationResponse struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Group           *string   `json:"group"`
	Bucket          *string   `json:"barca"`
	TargetPercent   *float64  `json:"target_percent"`
	CurrentQuantity *float64  `json:"current_quantity"`
	LastPrice       *float64  `json:"last_price"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func toWalletAllocations(entries []*domain.LedgerEntry) []walletAllocationResponse {
	out := make([]walletAllocationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, walletAllocationResponse{
			ID:              e.ID.String(),
			Symbol:          e.Symbol,
			Group:           e.Group,
			Bucket:          e.Bucket,
			TargetPercent:   e.TargetPercent,
			CurrentQuantity: e.CurrentQuantity,
			LastPrice:       e.LastPrice,
			Notes:           e.Notes,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out
}
