// Package orders implements the order workflow: upload and import of order
// workbooks, status changes and deletion.
package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/order-assistant/constants"
	"github.com/joseph-ayodele/order-assistant/internal/async"
	"github.com/joseph-ayodele/order-assistant/internal/common"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
	"github.com/joseph-ayodele/order-assistant/internal/metrics"
	"github.com/joseph-ayodele/order-assistant/internal/repository"
)

// Extractor validates and parses an order workbook on disk.
type Extractor interface {
	Validate(path string) (bool, string)
	Extract(path, source string) (*entity.Order, error)
}

// Service handles order business logic.
type Service struct {
	repo      repository.OrderRepository
	extractor Extractor
	queue     async.Queue // nil disables prerendering
	uploadDir string
	logger    *slog.Logger
}

// NewService creates a new order service.
func NewService(repo repository.OrderRepository, ex Extractor, q async.Queue, uploadDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		extractor: ex,
		queue:     q,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Upload stores the workbook under the upload directory and imports it.
// The stored file is removed when the import fails.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*entity.Order, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)

	name := SanitizeFilename(filename)
	if name == "" {
		metrics.RecordOrderImport(metrics.StatusInvalid)
		return nil, common.NewAppError("INVALID_FILE", "Файл не выбран", common.ErrInvalidInput)
	}
	if !constants.IsAllowedExt(filepath.Ext(name)) {
		metrics.RecordOrderImport(metrics.StatusInvalid)
		return nil, common.NewAppError("INVALID_FILE",
			"Недопустимый формат файла. Разрешены только .xlsx файлы", common.ErrInvalidInput)
	}

	path, err := s.store(name, r)
	if err != nil {
		s.logger.Error("orders.upload.store_failed", "req_id", reqID, "filename", name, "error", err)
		metrics.RecordOrderImport(metrics.StatusError)
		return nil, common.NewAppError("STORAGE_ERROR", "Не удалось сохранить файл", errors.Join(common.ErrInternal, err))
	}

	order, err := s.importStored(ctx, path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("orders.upload.cleanup_failed", "req_id", reqID, "path", path, "error", rmErr)
		}
		s.logger.Info("orders.import.failed", "req_id", reqID, "filename", name, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	s.logger.Info("orders.import.ok", "req_id", reqID, "order_id", order.ID, "order_number", order.OrderNumber,
		"items", len(order.Items), "filename", order.SourceFilename, "elapsed_ms", time.Since(start).Milliseconds())
	s.enqueuePrerender(ctx, order.ID)
	return order, nil
}

// ImportFile copies a workbook already on disk into the upload directory
// and imports it. The source file is left untouched.
func (s *Service) ImportFile(ctx context.Context, path string) (*entity.Order, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, common.NewAppError("INVALID_FILE", "path is required", common.ErrInvalidInput)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("file not found: %s", path), common.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Upload(ctx, filepath.Base(path), f)
}

func (s *Service) importStored(ctx context.Context, path string) (*entity.Order, error) {
	if ok, msg := s.extractor.Validate(path); !ok {
		metrics.RecordOrderImport(metrics.StatusInvalid)
		return nil, common.NewAppError("VALIDATION_ERROR", "Ошибка в файле: "+msg, common.ErrValidation)
	}

	order, err := s.extractor.Extract(path, filepath.Base(path))
	if err != nil {
		metrics.RecordOrderImport(metrics.StatusInvalid)
		return nil, common.NewAppError("VALIDATION_ERROR", "Ошибка обработки файла", errors.Join(common.ErrValidation, err))
	}

	exists, err := s.repo.ExistsByNumber(ctx, order.OrderNumber)
	if err != nil {
		metrics.RecordOrderImport(metrics.StatusError)
		return nil, err
	}
	if exists {
		metrics.RecordOrderImport(metrics.StatusDuplicate)
		return nil, common.NewAppError("DUPLICATE_ORDER",
			fmt.Sprintf("Заказ № %s уже существует", order.OrderNumber), common.ErrConflict)
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, common.ErrConflict) {
			metrics.RecordOrderImport(metrics.StatusDuplicate)
		} else {
			metrics.RecordOrderImport(metrics.StatusError)
		}
		return nil, err
	}
	metrics.RecordOrderImport(metrics.StatusSuccess)
	return order, nil
}

// store writes r to a staging file and links it under a free name in the
// upload directory. A taken name gets a random suffix.
func (s *Service) store(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.uploadDir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	dst := filepath.Join(s.uploadDir, name)
	for attempt := 0; attempt < maxStoreAttempts; attempt++ {
		// Link fails when dst exists, so two uploads never share a file.
		err := os.Link(tmp.Name(), dst)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		dst = filepath.Join(s.uploadDir, strings.TrimSuffix(name, ext)+"_"+uuid.NewString()[:8]+ext)
	}
	return "", fmt.Errorf("no free name for %s", name)
}

func (s *Service) enqueuePrerender(ctx context.Context, orderID int64) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(ctx, async.Job{
		OrderID:     orderID,
		SubmittedAt: time.Now(),
		TraceID:     common.RequestIDFromContext(ctx),
	})
	if err != nil {
		s.logger.Warn("orders.prerender.enqueue_failed", "order_id", orderID, "error", err)
	}
}

func (s *Service) List(ctx context.Context) ([]*entity.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateItemStatus sets the status of one item of an order.
func (s *Service) UpdateItemStatus(ctx context.Context, orderID, itemID int64, status string) (*entity.OrderItem, error) {
	st, ok := constants.ParseItemStatus(status)
	if !ok {
		return nil, common.NewAppError("INVALID_STATUS", "Недопустимый статус", common.ErrInvalidInput)
	}
	if err := s.repo.UpdateItemStatus(ctx, orderID, itemID, st); err != nil {
		return nil, err
	}
	s.logger.Info("orders.item.status", "order_id", orderID, "item_id", itemID, "status", st)
	return s.repo.GetItem(ctx, orderID, itemID)
}

// Complete closes the order. An empty status means assembled.
func (s *Service) Complete(ctx context.Context, id int64, status string) (*entity.Order, error) {
	st := constants.OrderStatusAssembled
	if strings.TrimSpace(status) != "" {
		allowed := make([]string, 0, 2)
		for _, c := range constants.CompletionStatuses() {
			allowed = append(allowed, string(c))
		}
		v := common.NewValidator().Field("status", status, common.OneOf(allowed...))
		if v.HasErrors() {
			return nil, v.Error()
		}
		st, _ = constants.ParseOrderStatus(status)
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, err
	}
	s.logger.Info("orders.complete", "order_id", id, "status", st)
	return s.repo.GetByID(ctx, id)
}

// Delete removes the order, its items and the uploaded workbook.
func (s *Service) Delete(ctx context.Context, id int64) (*entity.Order, error) {
	order, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.SourceFilename != "" {
		path := filepath.Join(s.uploadDir, filepath.Base(order.SourceFilename))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("orders.delete.file_failed", "order_id", id, "path", path, "error", err)
		}
	}
	s.logger.Info("orders.delete", "order_id", id, "order_number", order.OrderNumber)
	return order, nil
}
