package session

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"govgrant-assist/internal/helper"
	"govgrant-assist/internal/models"
)

// Factory creates the session for a freshly generated id.
type Factory func(id string) (*Session, error)

// Store keeps sessions in memory and closes them once they have been idle
// for longer than the ttl.
type Store struct {
	cache      *cache.Cache
	newSession Factory
}

func NewStore(ttl time.Duration, factory Factory) *Store {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, v interface{}) {
		s, ok := v.(*Session)
		if !ok {
			return
		}
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("Failed to close session")
		}
		log.Debug().Str("session", id).Msg("Session evicted")
	})
	return &Store{cache: c, newSession: factory}
}

func (st *Store) Create() (*Session, error) {
	id, err := helper.NewID()
	if err != nil {
		return nil, err
	}
	s, err := st.newSession(id)
	if err != nil {
		return nil, err
	}
	st.cache.Set(id, s, cache.DefaultExpiration)
	log.Info().Str("session", id).Msg("Session created")
	return s, nil
}

// Get returns the session and extends its lifetime.
func (st *Store) Get(id string) (*Session, error) {
	v, ok := st.cache.Get(id)
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	s := v.(*Session)
	// Replace fails if the janitor evicted the session in the meantime
	if err := st.cache.Replace(id, s, cache.DefaultExpiration); err != nil {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) error {
	if _, ok := st.cache.Get(id); !ok {
		return models.ErrSessionNotFound
	}
	st.cache.Delete(id)
	return nil
}

func (st *Store) Count() int {
	return st.cache.ItemCount()
}

// Close tears down every session.
func (st *Store) Close() {
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
