package gateway

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/chipsync/internal/models"
	"github.com/mpetrov/chipsync/internal/repositories"
	"github.com/mpetrov/chipsync/internal/services"
)

func newTestGateway(t *testing.T) (*Gateway, *services.AdminService) {
	t.Helper()

	store := repositories.NewFileStore(filepath.Join(t.TempDir(), "users_data.json"), zerolog.Nop())
	require.NoError(t, store.Load(context.Background()))

	events := services.NewMemoryEventLog(zerolog.Nop())
	syncSvc := services.NewSyncService(store, events, zerolog.Nop())
	adminSvc := services.NewAdminService(store, events, 99, zerolog.Nop())
	return New(syncSvc, zerolog.Nop()), adminSvc
}

// TestGateway_DataMessageFormat tests that snapshots carry the fixed prefix
// followed by the JSON payload the web app parses
func TestGateway_DataMessageFormat(t *testing.T) {
	gw, _ := newTestGateway(t)

	dataMsg, notification := gw.OnIncomingAction(context.Background(), 42, `{"action":"get_data"}`)
	assert.Empty(t, notification)
	require.True(t, strings.HasPrefix(dataMsg, DataMessagePrefix))

	var resp models.SyncResponse
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(dataMsg, DataMessagePrefix)), &resp))
	assert.Equal(t, models.DefaultBalance, resp.Balance)
	require.NotNil(t, resp.Inventory)
}

// TestGateway_ErrorsBecomeNotifications tests that handler errors are
// surfaced as a generic notification, never as a data message
func TestGateway_ErrorsBecomeNotifications(t *testing.T) {
	gw, _ := newTestGateway(t)

	dataMsg, notification := gw.OnIncomingAction(context.Background(), 42, `{"action":"update_data"}`)
	assert.Empty(t, dataMsg)
	assert.Contains(t, notification, "Something went wrong")

	dataMsg, notification = gw.OnIncomingAction(context.Background(), 42, `not json at all`)
	assert.Empty(t, dataMsg)
	assert.Contains(t, notification, "Something went wrong")
}

// TestGateway_UnknownActionIsSilent tests the pass-through: no message, no
// notification
func TestGateway_UnknownActionIsSilent(t *testing.T) {
	gw, _ := newTestGateway(t)

	dataMsg, notification := gw.OnIncomingAction(context.Background(), 42, `{"action":"noop_test"}`)
	assert.Empty(t, dataMsg)
	assert.Empty(t, notification)
}

func TestGateway_NotificationAlongsideData(t *testing.T) {
	gw, _ := newTestGateway(t)

	dataMsg, notification := gw.OnIncomingAction(context.Background(), 42,
		`{"action":"update_balance","balance":700,"win_amount":200,"multiplier":2}`)
	assert.True(t, strings.HasPrefix(dataMsg, DataMessagePrefix))
	assert.Contains(t, notification, "200")
	assert.Contains(t, notification, "2")
}
