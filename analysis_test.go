package moore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_DefaultTableIsLive(t *testing.T) {
	a, err := Analyze(DefaultTable(), DefaultEntryState)
	require.NoError(t, err)

	assert.True(t, a.Live())
	assert.Equal(t, AllStates(), a.Reachable)
	assert.Empty(t, a.Unreachable)
	assert.Empty(t, a.Traps)
	require.Len(t, a.Components, 1, "every state can reach every other")
	assert.Len(t, a.Components[0], NumStates)
	assert.Contains(t, a.String(), "live: true")
}

func TestAnalyze_DetectsTrapAndUnreachable(t *testing.T) {
	rows := DefaultTable().States()
	// PedOpen never leaves, so the flash states become unreachable
	for i := range rows[PedOpen].Next {
		rows[PedOpen].Next[i] = PedOpen
	}
	table, err := NewTable(rows)
	require.NoError(t, err)

	a, err := Analyze(table, NorthOpen)
	require.NoError(t, err)

	assert.False(t, a.Live())
	assert.Equal(t, []StateID{PedOpen}, a.Traps)
	assert.Equal(t, []StateID{PedFlash1Red, PedFlash1Off, PedFlash2Red, PedFlash2Off, PedFlash3Red}, a.Unreachable)
	assert.Contains(t, a.String(), "traps: WO")
}

func TestAnalyze_InvalidEntry(t *testing.T) {
	_, err := Analyze(DefaultTable(), StateID(20))
	assert.True(t, IsStateError(err))
}

func TestTable_Edges(t *testing.T) {
	var fromNorth []Edge
	for _, e := range DefaultTable().Edges() {
		if e.From == NorthOpen {
			fromNorth = append(fromNorth, e)
		}
	}

	require.Len(t, fromNorth, 2)
	assert.Equal(t, Edge{From: NorthOpen, To: NorthOpen, Readings: []Reading{0, 2}}, fromNorth[0])
	assert.Equal(t, Edge{From: NorthOpen, To: NorthYellow, Readings: []Reading{1, 3, 4, 5, 6, 7}}, fromNorth[1])
}

func TestTable_GraphOmitsSelfLoops(t *testing.T) {
	g := DefaultTable().Graph()

	assert.Equal(t, NumStates, g.Nodes().Len())
	assert.False(t, g.HasEdgeFromTo(int64(NorthOpen), int64(NorthOpen)))
	assert.True(t, g.HasEdgeFromTo(int64(NorthOpen), int64(NorthYellow)))
	assert.True(t, g.HasEdgeFromTo(int64(PedFlash3Red), int64(NorthOpen)))
}
