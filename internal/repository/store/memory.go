package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type timelineEntry struct {
	requestID string
	timestamp time.Time
}

// MemoryStore хранилище в памяти процесса: для тестов и локальной разработки
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]*RequestRecord
	active   map[int64]string // userID -> requestID
	timeline []timelineEntry  // по убыванию requestID
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore создаёт хранилище в памяти
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*RequestRecord),
		active:  make(map[int64]string),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock подменяет источник времени (для тестов)
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Set(_ context.Context, record *RequestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.RequestID] = record.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, requestID string) (*RequestRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.liveRecord(requestID)
	if record == nil {
		return nil, nil
	}
	return record.Clone(), nil
}

// liveRecord возвращает запись, удаляя её если она просрочена. Вызывать под mu.
func (s *MemoryStore) liveRecord(requestID string) *RequestRecord {
	record, ok := s.records[requestID]
	if !ok {
		return nil
	}
	if expired(record.Timestamp, s.ttl, s.now()) {
		delete(s.records, requestID)
		return nil
	}
	return record
}

func (s *MemoryStore) SetUserActiveRequest(_ context.Context, userID int64, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[userID] = requestID
	return nil
}

func (s *MemoryStore) ClearUserActiveRequest(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, userID)
	return nil
}

func (s *MemoryStore) GetActiveRequestID(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requestID, ok := s.active[userID]
	if !ok {
		return "", nil
	}

	record := s.liveRecord(requestID)
	if record == nil || record.IsDecided() {
		delete(s.active, userID)
		return "", nil
	}
	return requestID, nil
}

func (s *MemoryStore) AddToTimeline(_ context.Context, requestID string, timestamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.timeline {
		if e.requestID == requestID {
			return nil
		}
	}

	s.timeline = append(s.timeline, timelineEntry{requestID: requestID, timestamp: timestamp})
	// UUIDv7 упорядочены по времени, поэтому сортировка по ID = сортировка по времени создания
	sort.Slice(s.timeline, func(i, j int) bool {
		return s.timeline[i].requestID > s.timeline[j].requestID
	})
	if len(s.timeline) > timelineCap {
		s.timeline = s.timeline[:timelineCap]
	}
	return nil
}

func (s *MemoryStore) RecentRequestIDs(_ context.Context, limit int, filter StatusFilter) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, limit)
	for _, e := range s.timeline {
		if len(ids) >= limit {
			break
		}

		record := s.liveRecord(e.requestID)
		if record == nil || !record.Matches(filter) {
			continue
		}
		ids = append(ids, e.requestID)
	}
	return ids, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if expired(record.Timestamp, s.ttl, now) {
			delete(s.records, id)
			deleted++
		}
	}

	for userID, requestID := range s.active {
		record, ok := s.records[requestID]
		if !ok || record.IsDecided() {
			delete(s.active, userID)
		}
	}

	kept := s.timeline[:0]
	for _, e := range s.timeline {
		if _, ok := s.records[e.requestID]; ok {
			kept = append(kept, e)
		}
	}
	s.timeline = kept

	return deleted, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
