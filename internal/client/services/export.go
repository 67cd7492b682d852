package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shiftbook/internal/client/client"
	"github.com/dmitrijs2005/shiftbook/internal/netx"
)

// ExportService pushes an already-rendered export file (e.g. the monthly
// spreadsheet) to cloud storage via a presigned URL issued by the shift
// service. Rendering itself happens elsewhere.
type ExportService struct {
	client client.Client
}

func NewExportService(c client.Client) *ExportService {
	return &ExportService{client: c}
}

// Upload stores the file and returns the storage key it was written under.
func (s *ExportService) Upload(ctx context.Context, data []byte) (string, error) {
	key, url, err := s.client.ExportUploadURL(ctx)
	if err != nil {
		return "", fmt.Errorf("error requesting upload url: %w", err)
	}
	if err := netx.UploadToPresignedURL(ctx, url, data); err != nil {
		return "", fmt.Errorf("error uploading export: %w", err)
	}
	return key, nil
}
