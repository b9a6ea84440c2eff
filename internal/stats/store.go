package stats

import (
	"context"
	"sync"

	"github.com/pefman/gesture-duel/internal/models"
)

// Store persists completed battle records.
type Store interface {
	Append(ctx context.Context, rec models.BattleRecord) error
	// List returns up to limit records, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.BattleRecord, error)
}

// MemoryStore keeps history in process (lost on restart).
type MemoryStore struct {
	mu      sync.Mutex
	records []models.BattleRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Append(_ context.Context, rec models.BattleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]models.BattleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Newest(m.records, limit), nil
}

// Newest returns a reversed copy of the tail of recs (append order in, newest first out).
func Newest(recs []models.BattleRecord, limit int) []models.BattleRecord {
	n := len(recs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.BattleRecord, 0, n)
	for i := len(recs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, recs[i])
	}
	return out
}
