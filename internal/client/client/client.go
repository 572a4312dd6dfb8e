package client

import (
	"context"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
)

// Client is the flipbook REST API contract.
type Client interface {
	ListRecent(ctx context.Context) ([]models.FlipbookSummary, error)
	GetFlipbook(ctx context.Context, id string) (*models.Flipbook, error)
	Upload(ctx context.Context, req UploadRequest, progress ProgressFunc) (*models.UploadResult, error)
	Delete(ctx context.Context, id string) error
}

// UploadRequest is one document upload: the staged file and the resolved title.
type UploadRequest struct {
	File  models.LocalFile
	Title string
}

// ProgressFunc receives the number of body bytes handed to the transport so
// far and the total body size. It is called from the transport goroutine.
type ProgressFunc func(sent, total int64)
