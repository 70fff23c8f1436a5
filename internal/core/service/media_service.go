package service

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/pkg/metrics"
)

// MediaService validates inbound files against the upload policy of their
// slot and pushes them to the media host.
//
// Uploads and deletions run on a context detached from the caller's
// cancellation: once dispatched, a client disconnect does not abort them.
type MediaService struct {
	store    ports.MediaStore
	policies map[string]domain.UploadPolicy
	log      zerolog.Logger
}

func NewMediaService(store ports.MediaStore, policies map[string]domain.UploadPolicy, log zerolog.Logger) *MediaService {
	return &MediaService{
		store:    store,
		policies: maps.Clone(policies),
		log:      log,
	}
}

// Validate checks the file against the named policy without any I/O.
func (s *MediaService) Validate(file *ports.FileInput, slot string) (domain.UploadPolicy, error) {
	policy, ok := s.policies[slot]
	if !ok {
		return domain.UploadPolicy{}, &domain.ValidationError{Slot: slot, Bound: domain.BoundPolicy}
	}
	if err := policy.Check(slot, file.Size, file.ContentType); err != nil {
		return domain.UploadPolicy{}, err
	}
	return policy, nil
}

// Process uploads file under the named policy and returns its URL. A nil
// file yields "" and no error: the slot is left unchanged.
func (s *MediaService) Process(ctx context.Context, file *ports.FileInput, slot string) (string, error) {
	if file == nil {
		return "", nil
	}

	policy, err := s.Validate(file, slot)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(slot, "rejected").Inc()
		return "", err
	}

	body, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s upload: %w", slot, err)
	}
	defer body.Close()

	start := time.Now()
	url, err := s.store.Upload(context.WithoutCancel(ctx), ports.MediaObject{
		Folder:      policy.Folder,
		Format:      domain.FormatFromContentType(file.ContentType),
		ContentType: file.ContentType,
		Size:        file.Size,
		Body:        body,
	})
	metrics.MediaUploadDuration.WithLabelValues(slot).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(slot, "error").Inc()
		s.log.Error().Err(err).Str("slot", slot).Str("folder", policy.Folder).Msg("media upload failed")
		return "", fmt.Errorf("upload %s: %w", slot, err)
	}

	metrics.MediaUploadsTotal.WithLabelValues(slot, "ok").Inc()
	s.log.Debug().Str("slot", slot).Str("url", url).Int64("size", file.Size).Msg("media uploaded")
	return url, nil
}

// Replace uploads the new file, if any, and only after that upload succeeds
// attempts to delete the asset behind previousURL. Deletion is best effort:
// a failure is logged and the new URL is still returned.
func (s *MediaService) Replace(ctx context.Context, file *ports.FileInput, previousURL, slot string) (string, error) {
	url, err := s.Process(ctx, file, slot)
	if err != nil || url == "" {
		return url, err
	}
	if previousURL != "" && previousURL != url {
		s.destroy(context.WithoutCancel(ctx), previousURL, slot)
	}
	return url, nil
}

func (s *MediaService) destroy(ctx context.Context, url, slot string) {
	assetID, err := s.store.AssetID(url)
	if err != nil {
		metrics.MediaCleanupFailuresTotal.WithLabelValues(slot).Inc()
		s.log.Warn().Err(err).Str("slot", slot).Str("url", url).Msg("cannot derive asset id, previous media left in place")
		return
	}
	if err := s.store.Destroy(ctx, assetID); err != nil {
		metrics.MediaCleanupFailuresTotal.WithLabelValues(slot).Inc()
		s.log.Warn().Err(err).Str("slot", slot).Str("asset_id", assetID).Msg("failed to delete previous media")
		return
	}
	s.log.Debug().Str("slot", slot).Str("asset_id", assetID).Msg("previous media deleted")
}
