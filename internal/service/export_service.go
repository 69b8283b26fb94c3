package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"
)

const exportPageSize = domain.MaxPageSize

var exportHeader = []string{"id", "date", "amount", "category_id", "description", "created_at"}

// ExportOptions conveys where statements are written.
type ExportOptions struct {
	Bucket    string
	KeyPrefix string
	URLTTL    time.Duration
}

// Export describes an uploaded statement.
type Export struct {
	Key       string    `json:"key"`
	Rows      int       `json:"rows"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders the caller's ledger to CSV statements in object storage.
type ExportService interface {
	Export(ctx context.Context, id domain.Identity, filter domain.TransactionFilter) (*Export, error)
	List(ctx context.Context, id domain.Identity) ([]storage.ObjectInfo, error)
	Purge(ctx context.Context, id domain.Identity) (int, error)
}

type exportService struct {
	ledger LedgerService
	store  storage.Service
	opts   ExportOptions
	logger logrus.FieldLogger
}

func NewExportService(ledger LedgerService, store storage.Service, opts ExportOptions, logger logrus.FieldLogger) ExportService {
	if opts.URLTTL <= 0 {
		opts.URLTTL = 15 * time.Minute
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	return &exportService{ledger: ledger, store: store, opts: opts, logger: logger}
}

func (s *exportService) Export(ctx context.Context, id domain.Identity, filter domain.TransactionFilter) (*Export, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	rows := 0
	for page := 1; ; page++ {
		batch, err := s.ledger.List(ctx, id, filter, domain.Page{Number: page, Size: exportPageSize})
		if err != nil {
			return nil, err
		}
		for _, tx := range batch {
			if err := w.Write(exportRecord(tx)); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		rows += len(batch)
		if len(batch) < exportPageSize {
			break
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	key := s.userPrefix(id) + uuid.NewString() + ".csv"
	if err := s.store.PutObject(ctx, storage.Object{
		Bucket:      s.opts.Bucket,
		Key:         key,
		ContentType: "text/csv",
		Body:        &buf,
	}); err != nil {
		return nil, err
	}

	url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, key, s.opts.URLTTL)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": id.UserID,
		"key":     key,
		"rows":    rows,
	}).Info("statement exported")

	return &Export{
		Key:       key,
		Rows:      rows,
		URL:       url,
		ExpiresAt: time.Now().UTC().Add(s.opts.URLTTL),
	}, nil
}

func (s *exportService) List(ctx context.Context, id domain.Identity) ([]storage.ObjectInfo, error) {
	return s.store.ListObjects(ctx, s.opts.Bucket, s.userPrefix(id))
}

func (s *exportService) Purge(ctx context.Context, id domain.Identity) (int, error) {
	deleted, err := s.store.DeletePrefix(ctx, s.opts.Bucket, s.userPrefix(id))
	if err != nil {
		return deleted, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": id.UserID,
		"deleted": deleted,
	}).Info("statements purged")
	return deleted, nil
}

// userPrefix always ends in a slash so user-1/ never matches user-12/.
func (s *exportService) userPrefix(id domain.Identity) string {
	prefix := fmt.Sprintf("user-%d/", id.UserID)
	if s.opts.KeyPrefix != "" {
		prefix = s.opts.KeyPrefix + "/" + prefix
	}
	return prefix
}

func exportRecord(tx domain.Transaction) []string {
	category := ""
	if tx.CategoryID != nil {
		category = strconv.FormatInt(*tx.CategoryID, 10)
	}
	description := ""
	if tx.Description != nil {
		description = *tx.Description
	}
	return []string{
		strconv.FormatInt(tx.ID, 10),
		tx.Date.String(),
		tx.Amount.String(),
		category,
		description,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}
