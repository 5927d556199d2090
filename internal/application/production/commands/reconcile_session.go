package commands

import (
	"context"
	"fmt"

	"github.com/blooprocket-create/ChaosInFull-sub002/internal/application/common"
	appproduction "github.com/blooprocket-create/ChaosInFull-sub002/internal/application/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/production"
	"github.com/blooprocket-create/ChaosInFull-sub002/internal/domain/shared"
)

// ReconcileSessionCommand - Command the session layer issues when a client
// (re)acquires a character: fast-forward every station slot and resume live
// ticking. Must be sent exactly once per load.
type ReconcileSessionCommand struct {
	CharacterID shared.CharacterID
}

// ReconcileSessionResponse - Per-station catch-up results
type ReconcileSessionResponse struct {
	Stations map[production.StationKind]appproduction.ReconcileResult
}

// ReconcileSessionHandler - Handles session reconciliation commands
type ReconcileSessionHandler struct {
	reconciler *appproduction.CatchUpReconciler
}

// NewReconcileSessionHandler creates a new reconcile session handler
func NewReconcileSessionHandler(reconciler *appproduction.CatchUpReconciler) *ReconcileSessionHandler {
	return &ReconcileSessionHandler{reconciler: reconciler}
}

// Handle executes the reconcile session command
func (h *ReconcileSessionHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReconcileSessionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	results, err := h.reconciler.ReconcileCharacter(ctx, cmd.CharacterID)
	if err != nil {
		return nil, err
	}
	return &ReconcileSessionResponse{Stations: results}, nil
}
