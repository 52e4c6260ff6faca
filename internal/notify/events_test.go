package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventDefaults(t *testing.T) {
	ev := NewEvent(KindBookingCreated, "wanjiku@gmail.com", 42)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, KindBookingCreated, ev.Kind)
	assert.Equal(t, "wanjiku@gmail.com", ev.Recipient)
	assert.Equal(t, int64(42), ev.BookingID)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestEventWireFormatAlwaysCarriesWindow(t *testing.T) {
	// a receipt event has no stay window; consumers still rely on the keys
	// being present, with the zero time standing in
	ev := NewEvent(KindPaymentReceipt, "wanjiku@gmail.com", 42)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "check_in")
	assert.Contains(t, decoded, "check_out")

	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.CheckIn.IsZero())
}

func TestEventRoundTripKeepsWindow(t *testing.T) {
	ev := NewEvent(KindBookingConfirmed, "wanjiku@gmail.com", 42)
	ev.CheckIn = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	ev.CheckOut = time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, ev.CheckIn.Equal(back.CheckIn))
	assert.True(t, ev.CheckOut.Equal(back.CheckOut))
}
