package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simaogato/wealthflow-allocator/internal/domain"
	"github.com/simaogato/wealthflow-allocator/internal/usecase/history"
)

// AllocationComputer runs and reads back allocation cycles
type AllocationComputer interface {
	ComputeAndRecord(ctx context.Context) (domain.Report, error)
	Latest(ctx context.Context) (*domain.AllocationRecord, domain.Report, error)
}

// HistoryReader serves snapshot history
type HistoryReader interface {
	Fetch(ctx context.Context, level, from, to string) (*history.Result, error)
	Export(ctx context.Context, w io.Writer, level, from, to string) (int, error)
}

// LedgerManager imports and lists wallet allocations
type LedgerManager interface {
	ImportFile(ctx context.Context, path string) (int, error)
	Current(ctx context.Context) ([]*domain.LedgerEntry, error)
	SymbolHistory(ctx context.Context, symbol string) ([]*domain.LedgerEntry, error)
}

// Handler serves the allocation API
type Handler struct {
	Allocations AllocationComputer
	History     HistoryReader
	Ledger      LedgerManager
}

// Register mounts every route on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)

	r.GET("/allocations", h.computeAllocations)
	r.GET("/api/allocations", h.computeAllocations)
	r.GET("/allocations/latest", h.latestAllocation)

	r.GET("/history", h.getHistory)
	r.GET("/history/export", h.exportHistory)

	r.POST("/import_wallets", h.importWallets)
	r.GET("/wallet_allocations", h.listWalletAllocations)
	r.GET("/wallet_allocations/:symbol/history", h.walletAllocationHistory)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) computeAllocations(c *gin.Context) {
	report, err := h.Allocations.ComputeAndRecord(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) latestAllocation(c *gin.Context) {
	rec, report, err := h.Allocations.Latest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, latestResponse{ComputedAt: rec.ComputedAt, Report: report})
}

func (h *Handler) getHistory(c *gin.Context) {
	res, err := h.History.Fetch(c.Request.Context(), c.DefaultQuery("level", "totals"), c.Query("from"), c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, historyResponse{Level: res.Level, Rows: res.Rows()})
}

func (h *Handler) exportHistory(c *gin.Context) {
	level := c.DefaultQuery("level", "totals")

	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if _, err := h.History.Export(c.Request.Context(), &buf, level, c.Query("from"), c.Query("to")); err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="history_`+level+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) importWallets(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "request body must be {\"path\": \"...\"}"})
		return
	}

	n, err := h.Ledger.ImportFile(c.Request.Context(), req.Path)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, importResponse{Imported: n})
}

func (h *Handler) listWalletAllocations(c *gin.Context) {
	entries, err := h.Ledger.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletAllocations(entries))
}

func (h *Handler) walletAllocationHistory(c *gin.Context) {
	entries, err := h.Ledger.SymbolHistory(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWalletAllocations(entries))
}
