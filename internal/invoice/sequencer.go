// Package invoice owns the per-year invoice number counters. Counters only
// ever move forward; a deleted or edited sale never gives its number back.
package invoice

import (
	"fmt"
	"strconv"
	"time"

	"attar-pos/internal/store"
)

type Sequencer struct {
	st *store.Store
}

func New(st *store.Store) *Sequencer {
	return &Sequencer{st: st}
}

func seqKey(year int) string {
	return store.InvoiceSeqPrefix + strconv.Itoa(year)
}

// Format renders `INV-<year>-<seq>` with the sequence zero-padded to at
// least three digits.
func Format(year, seq int) string {
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}

// Sequence returns the stored counter for a year, 0 when the year has not
// been seen yet.
func (s *Sequencer) Sequence(year int) int {
	seq := 0
	s.st.Get(seqKey(year), &seq)
	if seq < 0 {
		seq = 0
	}
	return seq
}

func (s *Sequencer) SetSequence(year, seq int) error {
	return s.st.Set(seqKey(year), seq)
}

// Next advances the counter for a year by one and returns the new value.
func (s *Sequencer) Next(year int) (int, error) {
	next := s.Sequence(year) + 1
	if err := s.st.Set(seqKey(year), next); err != nil {
		return 0, err
	}
	return next, nil
}

// PeekNext formats the number the next sale would get without consuming a
// slot. Used to prefill the invoice field on the billing screen.
func (s *Sequencer) PeekNext(year int) string {
	return Format(year, s.Sequence(year)+1)
}

// Assign consumes one sequence slot for the year and returns the invoice
// number for the sale. When the field was already filled in, the existing
// number wins but the counter still advances: every confirmed sale takes a
// slot whether its number was typed or generated. Intentional asymmetry,
// do not "fix" it without a product decision.
func (s *Sequencer) Assign(year int, existing string) (string, error) {
	seq, err := s.Next(year)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	return Format(year, seq), nil
}

// AllSequences collects the non-zero counters of the last five years, for
// backups and exports.
func (s *Sequencer) AllSequences() map[int]int {
	sequences := map[int]int{}
	currentYear := time.Now().Year()
	for i := 0; i < 5; i++ {
		year := currentYear - i
		if seq := s.Sequence(year); seq > 0 {
			sequences[year] = seq
		}
	}
	return sequences
}
