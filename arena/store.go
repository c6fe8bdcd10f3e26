package arena

import (
	"sync"
	"time"

	"github.com/colearn-app/colearn-api/models"
	"github.com/colearn-app/colearn-api/utils"
)

// battleTTL is how long an abandoned battle stays resumable
const battleTTL = 2 * time.Hour

// BattleStore holds active duels and boss fights in memory. Finished
// battles are persisted to history by the caller and evicted here;
// abandoned ones age out.
type BattleStore struct {
	duels   map[string]*models.Duel
	fights  map[string]*models.BossFight
	touched map[string]time.Time
	mutex   sync.RWMutex
}

func NewBattleStore() *BattleStore {
	store := &BattleStore{
		duels:   make(map[string]*models.Duel),
		fights:  make(map[string]*models.BossFight),
		touched: make(map[string]time.Time),
	}

	// Start a cleanup goroutine
	go store.cleanupAbandoned()

	return store
}

func (s *BattleStore) PutDuel(d *models.Duel) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.duels[d.ID] = d
	s.touched[d.ID] = time.Now()
}

// GetDuel returns the user's active duel. Ownership is checked so one
// user cannot play another's battle.
func (s *BattleStore) GetDuel(id string, userID int) (*models.Duel, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	d, exists := s.duels[id]
	if !exists || d.UserID != userID {
		return nil, false
	}
	s.touched[id] = time.Now()
	return d, true
}

func (s *BattleStore) RemoveDuel(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.duels, id)
	delete(s.touched, id)
}

func (s *BattleStore) PutBossFight(f *models.BossFight) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.fights[f.ID] = f
	s.touched[f.ID] = time.Now()
}

func (s *BattleStore) GetBossFight(id string, userID int) (*models.BossFight, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	f, exists := s.fights[id]
	if !exists || f.UserID != userID {
		return nil, false
	}
	s.touched[id] = time.Now()
	return f, true
}

func (s *BattleStore) RemoveBossFight(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.fights, id)
	delete(s.touched, id)
}

func (s *BattleStore) cleanupAbandoned() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mutex.Lock()
		cutoff := time.Now().Add(-battleTTL)
		cleaned := 0
		for id, at := range s.touched {
			if at.Before(cutoff) {
				delete(s.duels, id)
				delete(s.fights, id)
				delete(s.touched, id)
				cleaned++
			}
		}
		s.mutex.Unlock()
		if cleaned > 0 {
			utils.LogArena("Cleaned up %d abandoned battles", cleaned)
		}
	}
}
