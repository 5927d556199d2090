package commands

import (
	"context"
	"fmt"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/common"
	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// StartBatchCommand - Command to start a multi-unit production batch
type StartBatchCommand struct {
	CharacterID shared.CharacterID
	Station     production.StationKind
	RecipeID    production.RecipeID
	Units       int
}

// StartBatchResponse - Response with the initial progress projection
type StartBatchResponse struct {
	Progress production.Progress
}

// StartBatchHandler - Handles batch start commands
type StartBatchHandler struct {
	scheduler *appproduction.StationScheduler
}

// NewStartBatchHandler creates a new start batch handler
func NewStartBatchHandler(scheduler *appproduction.StationScheduler) *StartBatchHandler {
	return &StartBatchHandler{scheduler: scheduler}
}

// Handle executes the start batch command
func (h *StartBatchHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*StartBatchCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	progress, err := h.scheduler.Start(ctx, cmd.CharacterID, cmd.Station, cmd.RecipeID, cmd.Units)
	if err != nil {
		return nil, err
	}
	return &StartBatchResponse{Progress: progress}, nil
}
