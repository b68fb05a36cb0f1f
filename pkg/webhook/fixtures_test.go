package webhook_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	lsSecret     = "ls_webhook_signing_secret"
	paddleSecret = "pdl_ntfset_secret"
)

func lsPayload(t *testing.T, eventName, webhookID, accountID string, attrs map[string]any) []byte {
	t.Helper()
	base := map[string]any{
		"product_id": 1001,
		"variant_id": 2002,
		"status":     "active",
		"renews_at":  "2025-07-01T09:00:00.000000Z",
		"ends_at":    nil,
		"updated_at": "2025-06-01T09:00:00.000000Z",
	}
	for k, v := range attrs {
		base[k] = v
	}
	body := map[string]any{
		"meta": map[string]any{
			"event_name": eventName,
			"webhook_id": webhookID,
			"custom_data": map[string]any{
				"customer_id": accountID,
			},
		},
		"data": map[string]any{
			"type":       "subscriptions",
			"id":         "4242",
			"attributes": base,
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func paddlePayload(t *testing.T, eventType string, data map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"event_id":        "evt_01hv8x",
		"event_type":      eventType,
		"occurred_at":     "2025-06-01T09:00:00.123456Z",
		"notification_id": "ntf_01hv8x",
		"data":            data,
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}
