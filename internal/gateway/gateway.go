// Package gateway binds the sync protocol to the outside world: the chat
// transport, the embedded web app and a small HTTP surface. It contains no
// business rules, only marshalling.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/services"
)

// DataMessagePrefix tags outbound state snapshots so the web app can tell
// them apart from ordinary chat text. The web app matches on it verbatim.
const DataMessagePrefix = "web_app_data:"

// Gateway adapts between the transport's message primitives and the sync
// protocol handler.
type Gateway struct {
	sync *services.SyncService
	log  zerolog.Logger
}

func New(sync *services.SyncService, log zerolog.Logger) *Gateway {
	return &Gateway{
		sync: sync,
		log:  log.With().Str("component", "gateway").Logger(),
	}
}

// OnIncomingAction handles one raw payload from a user's web app. It
// returns the outbound data message (empty for no-op actions) and an
// optional notification. Handler errors never escape: they are surfaced to
// the user as a generic error notification, as the protocol prescribes.
func (g *Gateway) OnIncomingAction(ctx context.Context, userID int64, raw string) (dataMsg, notification string) {
	result, err := g.sync.Handle(ctx, userID, []byte(raw))
	if err != nil {
		g.log.Warn().Err(err).Int64("user_id", userID).Msg("sync request failed")
		return "", fmt.Sprintf("Something went wrong: %v", err)
	}
	if result == nil {
		return "", ""
	}

	if result.Data != nil {
		payload, err := json.Marshal(result.Data)
		if err != nil {
			g.log.Error().Err(err).Int64("user_id", userID).Msg("failed to marshal sync response")
			return "", fmt.Sprintf("Something went wrong: %v", err)
		}
		dataMsg = DataMessagePrefix + string(payload)
	}
	return dataMsg, result.Notification
}
