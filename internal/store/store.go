package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/momoledger/internal/domain"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrDuplicateID = errors.New("transaction id already exists")
	ErrPersistence = errors.New("transaction file could not be written")
)

var persistFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "momo_store_persist_failures_total",
	Help: "Mutations rolled back because the transaction file could not be written",
})

// Persister loads and saves the full record sequence.
type Persister interface {
	Load() ([]domain.Transaction, error)
	Save([]domain.Transaction) error
}

// TransactionStore owns the ordered record sequence. Mutations run under an
// exclusive lock and only become visible once the persister accepted them.
type TransactionStore struct {
	mu      sync.RWMutex
	records []domain.Transaction
	persist Persister
	log     zerolog.Logger
}

// Open loads the persisted sequence and drops records that break id
// uniqueness, keeping the first occurrence. A cleaned sequence is written
// back before Open returns.
func Open(p Persister, log zerolog.Logger) (*TransactionStore, error) {
	loaded, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	clean := make([]domain.Transaction, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))
	for i, tx := range loaded {
		if tx.ExternalID == "" {
			log.Warn().Int("position", i).Msg("Dropping stored transaction without id")
			continue
		}
		if _, dup := seen[tx.ExternalID]; dup {
			log.Warn().Int("position", i).Str("txn_external_id", tx.ExternalID).Msg("Dropping duplicate stored transaction")
			continue
		}
		seen[tx.ExternalID] = struct{}{}
		clean = append(clean, tx)
	}

	if len(clean) != len(loaded) {
		if err := p.Save(clean); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		log.Info().Int("dropped", len(loaded)-len(clean)).Msg("Rewrote transaction file without invalid records")
	}

	return &TransactionStore{records: clean, persist: p, log: log}, nil
}

// Unique returns txs without records that lack an id or repeat an earlier
// one, along with the number dropped. The first occurrence wins.
func Unique(txs []domain.Transaction) ([]domain.Transaction, int) {
	seen := make(map[string]struct{}, len(txs))
	kept := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ExternalID == "" {
			continue
		}
		if _, dup := seen[tx.ExternalID]; dup {
			continue
		}
		seen[tx.ExternalID] = struct{}{}
		kept = append(kept, tx)
	}
	return kept, len(txs) - len(kept)
}

func (s *TransactionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// List returns a copy of every record in insertion order.
func (s *TransactionStore) List() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

func (s *TransactionStore) Get(id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Transaction{}, ErrNotFound
	}
	return s.records[i], nil
}

func (s *TransactionStore) Create(tx domain.Transaction) (domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(tx.ExternalID) >= 0 {
		return domain.Transaction{}, ErrDuplicateID
	}

	next := append(slices.Clone(s.records), tx)
	if err := s.commit(next, "create", tx.ExternalID); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// Update merges patch onto the record with the given id. The patch may rename
// the record as long as the new id is free.
func (s *TransactionStore) Update(id string, patch []byte) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Transaction{}, ErrNotFound
	}

	merged, err := s.records[i].Merge(patch)
	if err != nil {
		return domain.Transaction{}, err
	}
	if merged.ExternalID != id && s.indexOf(merged.ExternalID) >= 0 {
		return domain.Transaction{}, ErrDuplicateID
	}

	next := slices.Clone(s.records)
	next[i] = merged
	if err := s.commit(next, "update", id); err != nil {
		return domain.Transaction{}, err
	}
	return merged, nil
}

func (s *TransactionStore) Delete(id string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Transaction{}, ErrNotFound
	}

	removed := s.records[i]
	next := slices.Delete(slices.Clone(s.records), i, i+1)
	if err := s.commit(next, "delete", id); err != nil {
		return domain.Transaction{}, err
	}
	return removed, nil
}

// commit persists next and swaps it in. On failure the in-memory sequence is
// left as it was. Callers hold s.mu.
func (s *TransactionStore) commit(next []domain.Transaction, op, id string) error {
	if err := s.persist.Save(next); err != nil {
		persistFailures.Inc()
		s.log.Error().Err(err).Str("op", op).Str("txn_external_id", id).Msg("Persist failed, mutation rolled back")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.records = next
	return nil
}

func (s *TransactionStore) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(tx domain.Transaction) bool {
		return tx.ExternalID == id
	})
}
