package order

import (
	"context"
	"errors"
	"fmt"

	"labtest-be/internal/access"
	"labtest-be/internal/auth"
	"labtest-be/internal/blob"
	"labtest-be/internal/logger"
	"labtest-be/internal/notification"

	"go.uber.org/zap"
)

// AttachReport stores the report blob and moves the order from processing
// to report_submitted in one conditional write.
//
// Once the blob has been written, every failure deletes it again. There is
// no transaction spanning the blob store and the database.
func (s *service) AttachReport(ctx context.Context, id string, up ReportUpload, actor auth.Identity) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AttachReport"),
		zap.String("order_id", id),
		zap.String("filename", up.Filename),
	)

	if !access.CanMutate(access.KeySet{}, actor, access.ActionAttachReport) {
		return nil, ErrForbidden
	}
	if up.Filename == "" || up.Body == nil {
		return nil, fmt.Errorf("%w: report file is required", ErrInvalidInput)
	}

	if err := s.blobs.Put(ctx, blob.CategoryReports, up.Filename, up.Body, up.ContentType); err != nil {
		log.Error("failed to store report", zap.Error(err))
		s.discardBlob(ctx, up.Filename)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	stored, err := s.blobs.Exists(ctx, blob.CategoryReports, up.Filename)
	if err != nil || !stored {
		log.Error("stored report not found", zap.Bool("exists", stored), zap.Error(err))
		s.discardBlob(ctx, up.Filename)
		return nil, ErrUploadFailed
	}

	updated, err := s.bindReport(ctx, id, ReportReference{
		URL:      s.blobs.URL(blob.CategoryReports, up.Filename),
		Filename: up.Filename,
	})
	if err != nil {
		log.Info("report not attached, removing blob", zap.Error(err))
		s.discardBlob(ctx, up.Filename)
		return nil, err
	}
	s.stats.ReportsAttached.Inc()
	s.stats.Transitions.Inc()

	s.notify(ctx, notification.KindReportReady, updated, map[string]string{
		"orderId":   updated.ID,
		"reportUrl": updated.Report.URL,
	})

	log.Info("report attached")
	return updated, nil
}

func (s *service) bindReport(ctx context.Context, id string, ref ReportReference) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusProcessing {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, StatusUpdate{
		ID:     o.ID,
		From:   StatusProcessing,
		To:     StatusReportSubmitted,
		Notes:  notesFor(StatusReportSubmitted, ""),
		Report: &ref,
		At:     s.now(),
	})
	if errors.Is(err, ErrStaleWrite) {
		return nil, s.resolveStale(ctx, o.ID)
	}
	return updated, err
}

func (s *service) discardBlob(ctx context.Context, name string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), blob.CategoryReports, name); err != nil {
		logger.FromCtx(ctx).Error("failed to delete orphaned report",
			zap.String("filename", name),
			zap.Error(err),
		)
		return
	}
	s.stats.BlobCleanups.Inc()
}
