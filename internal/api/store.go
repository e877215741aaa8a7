package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samcharles93/sc2k/pkg/sc2"
)

type cityRecord struct {
	summary CitySummary
	city    *sc2.City
}

// CityStore keeps uploaded saves in memory, in upload order.
type CityStore struct {
	mu     sync.RWMutex
	cities map[string]*cityRecord
	order  []string
}

func NewCityStore() *CityStore {
	return &CityStore{
		cities: make(map[string]*cityRecord),
	}
}

func (s *CityStore) Add(city *sc2.City, filename string, size int, now time.Time) CitySummary {
	sum := CitySummary{
		ID:        newCityID(),
		Object:    "city",
		CreatedAt: now.Unix(),
		Filename:  filename,
		Name:      city.Name,
		Bytes:     size,
		Chunks:    city.Container.Len(),
		Report:    reportBody(city.Report),
	}
	if city.Picture != nil {
		sum.Picture = &PictureDim{Width: city.Picture.Width, Height: city.Picture.Height}
	}

	s.mu.Lock()
	s.cities[sum.ID] = &cityRecord{summary: sum, city: city}
	s.order = append(s.order, sum.ID)
	s.mu.Unlock()

	return sum
}

// View runs fn with the city under a read lock.
func (s *CityStore) View(id string, fn func(CitySummary, *sc2.City) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cities[id]
	if !ok {
		return ErrCityNotFound
	}
	return fn(rec.summary, rec.city)
}

// Update runs fn with the city under the write lock.
func (s *CityStore) Update(id string, fn func(*sc2.City) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.cities[id]
	if !ok {
		return ErrCityNotFound
	}
	return fn(rec.city)
}

func (s *CityStore) List() []CitySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CitySummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.cities[id].summary)
	}
	return out
}

func (s *CityStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cities[id]; !ok {
		return false
	}
	delete(s.cities, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func newCityID() string {
	return "city_" + uuid.NewString()
}
