package commands

import (
	"context"
	"fmt"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/common"
	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// CancelBatchCommand - Command to cancel the active batch at a station
type CancelBatchCommand struct {
	CharacterID shared.CharacterID
	Station     production.StationKind
}

// CancelBatchResponse - Response listing the refunded inputs
type CancelBatchResponse struct {
	Refunded map[production.ItemID]int
}

// CancelBatchHandler - Handles batch cancellation commands
type CancelBatchHandler struct {
	scheduler *appproduction.StationScheduler
}

// NewCancelBatchHandler creates a new cancel batch handler
func NewCancelBatchHandler(scheduler *appproduction.StationScheduler) *CancelBatchHandler {
	return &CancelBatchHandler{scheduler: scheduler}
}

// Handle executes the cancel batch command
func (h *CancelBatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CancelBatchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	refunded, err := h.scheduler.Cancel(ctx, cmd.CharacterID, cmd.Station)
	if err != nil {
		return nil, err
	}
	return &CancelBatchResponse{Refunded: refunded}, nil
}
