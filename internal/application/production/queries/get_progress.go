package queries

import (
	"context"
	"fmt"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/common"
	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// GetProgressQuery - Query the live progress projection of one station slot.
// Read-only; progress bars render from this and nothing mutates through it.
type GetProgressQuery struct {
	CharacterID shared.CharacterID
	Station     production.StationKind
}

// GetProgressResponse - Response carrying the projection
type GetProgressResponse struct {
	Progress production.Progress
}

// GetProgressHandler - Handles progress queries
type GetProgressHandler struct {
	scheduler *appproduction.StationScheduler
}

// NewGetProgressHandler creates a new progress query handler
func NewGetProgressHandler(scheduler *appproduction.StationScheduler) *GetProgressHandler {
	return &GetProgressHandler{scheduler: scheduler}
}

// Handle executes the progress query
func (h *GetProgressHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetProgressQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	progress, err := h.scheduler.Progress(query.CharacterID, query.Station)
	if err != nil {
		return nil, err
	}
	return &GetProgressResponse{Progress: progress}, nil
}
