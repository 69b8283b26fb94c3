package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
)

type createTransactionRequest struct {
	Amount      *domain.Money `json:"amount" binding:"required"`
	Date        *domain.Date  `json:"date" binding:"required"`
	Description *string       `json:"description"`
	CategoryID  *int64        `json:"category_id"`
}

type updateTransactionRequest struct {
	Amount      *domain.Money         `json:"amount"`
	Date        *domain.Date          `json:"date"`
	Description domain.OptionalString `json:"description"`
	CategoryID  domain.OptionalID     `json:"category_id"`
}

type ledgerQuery struct {
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	CategoryID *int64 `form:"category_id"`
	Type       string `form:"type"`
	Page       *int   `form:"page" binding:"omitnil,min=1"`
	PageSize   *int   `form:"page_size" binding:"omitnil,min=1,max=100"`
}

func (q ledgerQuery) dateRange() (domain.DateRange, error) {
	var r domain.DateRange
	if s := strings.TrimSpace(q.StartDate); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			return r, fmt.Errorf("start_date: %w", err)
		}
		r.From = &d
	}
	if s := strings.TrimSpace(q.EndDate); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			return r, fmt.Errorf("end_date: %w", err)
		}
		r.To = &d
	}
	return r, nil
}

func (q ledgerQuery) filter() (domain.TransactionFilter, error) {
	dates, err := q.dateRange()
	if err != nil {
		return domain.TransactionFilter{}, err
	}
	f := domain.TransactionFilter{DateRange: dates, CategoryID: q.CategoryID}
	if s := strings.TrimSpace(q.Type); s != "" {
		t, err := domain.ParseCategoryType(s)
		if err != nil {
			return f, fmt.Errorf("type: %w", err)
		}
		f.CategoryType = &t
	}
	return f, nil
}

func (q ledgerQuery) page() domain.Page {
	p := domain.Page{Number: 1, Size: domain.DefaultPageSize}
	if q.Page != nil {
		p.Number = *q.Page
	}
	if q.PageSize != nil {
		p.Size = *q.PageSize
	}
	return p
}

// bindLedgerQuery aborts with 422 on malformed query parameters.
func bindLedgerQuery(c *gin.Context) (ledgerQuery, domain.TransactionFilter, bool) {
	var q ledgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return q, domain.TransactionFilter{}, false
	}
	f, err := q.filter()
	if err != nil {
		badRequest(c, err)
		return q, f, false
	}
	return q, f, true
}

func (h *Handler) createTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tx, err := h.Ledger.Create(c.Request.Context(), mustIdentity(c), domain.NewTransaction{
		Amount:      *req.Amount,
		Date:        *req.Date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(*tx))
}

func (h *Handler) listTransactions(c *gin.Context) {
	q, filter, ok := bindLedgerQuery(c)
	if !ok {
		return
	}

	transactions, err := h.Ledger.List(c.Request.Context(), mustIdentity(c), filter, q.page())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		resp[i] = transactionToResponse(transactions[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tx, err := h.Ledger.Get(c.Request.Context(), mustIdentity(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tx, err := h.Ledger.Update(c.Request.Context(), mustIdentity(c), id, domain.TransactionPatch{
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Ledger.Delete(c.Request.Context(), mustIdentity(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
