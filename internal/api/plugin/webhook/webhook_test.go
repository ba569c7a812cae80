package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meta_response/internal/api/plugin/capability"
	"meta_response/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAdapter(capability.Ticket, map[string]interface{}{
		"endpoint": server.URL,
		"secret":   "s3cret",
		"headers":  map[string]interface{}{"X-Team": "response"},
	}, 5*time.Second)
}

func TestAdapterCreateTicket(t *testing.T) {
	var gotEnvelope envelope
	var gotAuth, gotHeader string

	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Team")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		_ = json.NewEncoder(w).Encode(capability.TicketRef{ResourceID: "JIRA-42", Weblink: "https://jira/JIRA-42"})
	})

	ref, err := adapter.CreateTicket(context.Background(), capability.SubjectSnapshot{
		Title:  "Disk full",
		Status: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "JIRA-42", ref.ResourceID)
	assert.Equal(t, "https://jira/JIRA-42", ref.Weblink)
	assert.Equal(t, "ticket.create", gotEnvelope.Operation)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, "response", gotHeader)
}

func TestAdapterOperationWithoutResult(t *testing.T) {
	var gotEnvelope envelope
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		w.WriteHeader(http.StatusNoContent)
	})

	err := adapter.ArchiveChannel(context.Background(), "C123")
	require.NoError(t, err)
	assert.Equal(t, "chat.archive", gotEnvelope.Operation)
}

func TestAdapterNon2xxIsPluginError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	err := adapter.DeleteTicket(context.Background(), "JIRA-42")
	require.Error(t, err)

	var appErr *common.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.ErrCodePluginFailed.Code, appErr.Code.Code)
	assert.Equal(t, common.StatusBadGateway, appErr.StatusCode)
}

func TestAdapterUnreachableEndpoint(t *testing.T) {
	adapter := NewAdapter(capability.Chat, map[string]interface{}{
		"endpoint": "http://127.0.0.1:1",
	}, 500*time.Millisecond)

	err := adapter.SendDirect(context.Background(), "oncall@example.com", "shift over")
	require.Error(t, err)

	var appErr *common.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, common.ErrCodePluginFailed.Code, appErr.Code.Code)
}

func TestAdapterHonorsContextCancellation(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := adapter.Page(ctx, "svc-1", "incident summary")
	require.Error(t, err)
}

func TestAdapterOncallCurrent(t *testing.T) {
	shiftEnd := time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC)
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(capability.OncallShift{Email: "oncall@example.com", ShiftEnd: shiftEnd})
	})

	shift, err := adapter.Current(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "oncall@example.com", shift.Email)
	assert.True(t, shift.ShiftEnd.Equal(shiftEnd))
}
