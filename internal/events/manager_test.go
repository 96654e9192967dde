package events

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EmitLogsAndNotifies(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(zerolog.New(&buf))

	var received []Event
	m.Subscribe(func(e Event) { received = append(received, e) })

	event := m.Emit(StockAnalyzed, "dividends", map[string]interface{}{"symbol": "KO"})

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)
	assert.Equal(t, StockAnalyzed, event.Type)
	assert.Contains(t, buf.String(), "STOCK_ANALYZED")
	assert.Contains(t, buf.String(), `"symbol":"KO"`)
	require.Len(t, received, 1)
	assert.Equal(t, event.ID, received[0].ID)
}

func TestManager_EmitError(t *testing.T) {
	m := NewManager(zerolog.New(nil).Level(zerolog.Disabled))

	event := m.EmitError("charts", errors.New("render failed"), map[string]interface{}{"symbol": "T"})

	assert.Equal(t, ErrorOccurred, event.Type)
	assert.Equal(t, "render failed", event.Data["error"])
}
