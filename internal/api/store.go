package api

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultStoreCapacity bounds the number of results kept for lookup.
const DefaultStoreCapacity = 1024

// ResultStore keeps the most recent golden results by ID. Once full, the
// oldest result is evicted.
type ResultStore struct {
	mu       sync.Mutex
	capacity int
	results  map[string]GoldenResult
	order    []string
}

func NewResultStore(capacity int) *ResultStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &ResultStore{
		capacity: capacity,
		results:  make(map[string]GoldenResult),
	}
}

func (s *ResultStore) Put(res GoldenResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[res.ID]; !ok {
		s.order = append(s.order, res.ID)
	}
	s.results[res.ID] = res
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.results, oldest)
	}
}

func (s *ResultStore) Get(id string) (GoldenResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[id]
	return res, ok
}

func (s *ResultStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[id]; !ok {
		return false
	}
	delete(s.results, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func newResultID() string {
	return "golden_" + uuid.NewString()
}

func newVectorsID() string {
	return "vectors_" + uuid.NewString()
}
