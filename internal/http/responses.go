package http

import (
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"
)

type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     *string `json:"email"`
	CreatedAt string  `json:"created_at"`
}

type CategoryResponse struct {
	ID     int64               `json:"id"`
	UserID int64               `json:"user_id"`
	Name   string              `json:"name"`
	Type   domain.CategoryType `json:"type"`
}

type TransactionResponse struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	CategoryID  *int64       `json:"category_id"`
	Amount      domain.Money `json:"amount"`
	Date        domain.Date  `json:"date"`
	Description *string      `json:"description"`
	CreatedAt   string       `json:"created_at"`
}

type SummaryResponse struct {
	TotalIncome  domain.Money `json:"total_income"`
	TotalExpense domain.Money `json:"total_expense"`
	Balance      domain.Money `json:"balance"`
}

type MonthlySummaryResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	SummaryResponse
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func categoryToResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, UserID: c.UserID, Name: c.Name, Type: c.Type}
}

func transactionToResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		UserID:      tx.UserID,
		CategoryID:  tx.CategoryID,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func summaryToResponse(s domain.Summary) SummaryResponse {
	return SummaryResponse{TotalIncome: s.TotalIncome, TotalExpense: s.TotalExpense, Balance: s.Balance}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
