package invoice

import (
	"fmt"
	"testing"
	"time"

	"attar-pos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequencer(t *testing.T) *Sequencer {
	t.Helper()
	st := store.New(store.NewMem(), store.DefaultConfig())
	require.True(t, st.Available())
	return New(st)
}

func TestFormatPadsToThreeDigits(t *testing.T) {
	assert.Equal(t, "INV-2024-001", Format(2024, 1))
	assert.Equal(t, "INV-2024-042", Format(2024, 42))
	assert.Equal(t, "INV-2024-999", Format(2024, 999))
	assert.Equal(t, "INV-2024-1234", Format(2024, 1234))
}

func TestNextIsMonotonicPerYear(t *testing.T) {
	s := newTestSequencer(t)

	for want := 1; want <= 5; want++ {
		got, err := s.Next(2024)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// A different year has its own counter.
	got, err := s.Next(2025)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 5, s.Sequence(2024))
}

func TestPeekNextDoesNotConsume(t *testing.T) {
	s := newTestSequencer(t)

	assert.Equal(t, "INV-2024-001", s.PeekNext(2024))
	assert.Equal(t, "INV-2024-001", s.PeekNext(2024))
	assert.Equal(t, 0, s.Sequence(2024))
}

func TestAssignGeneratesWhenEmpty(t *testing.T) {
	s := newTestSequencer(t)

	got, err := s.Assign(2024, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", got)
	assert.Equal(t, 1, s.Sequence(2024))
}

// A pre-filled invoice number is kept, but the counter still advances:
// every confirmed sale consumes one sequence slot.
func TestAssignKeepsExistingButAdvancesCounter(t *testing.T) {
	s := newTestSequencer(t)

	got, err := s.Assign(2024, "INV-2024-CUSTOM")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-CUSTOM", got)
	assert.Equal(t, 1, s.Sequence(2024))

	// The skipped slot is never handed out again.
	got, err = s.Assign(2024, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-002", got)
}

func TestNegativeStoredCounterTreatedAsZero(t *testing.T) {
	s := newTestSequencer(t)
	require.NoError(t, s.SetSequence(2024, -7))
	assert.Equal(t, 0, s.Sequence(2024))
}

func TestAllSequencesCoversRecentYears(t *testing.T) {
	s := newTestSequencer(t)
	year := time.Now().Year()

	require.NoError(t, s.SetSequence(year, 12))
	require.NoError(t, s.SetSequence(year-1, 7))
	require.NoError(t, s.SetSequence(year-6, 3)) // too old to be included

	sequences := s.AllSequences()
	assert.Equal(t, map[int]int{year: 12, year - 1: 7}, sequences)
}

func TestSequencerUnavailableStore(t *testing.T) {
	mem := store.NewMem()
	mem.Down = true
	s := New(store.New(mem, store.DefaultConfig()))

	_, err := s.Next(2024)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.Equal(t, fmt.Sprintf("INV-%d-001", 2024), s.PeekNext(2024))
}
