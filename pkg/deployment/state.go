package deployment

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// State holds the single current Deployment for a project session.
//
// Every call to Begin starts a new generation. Writers must present the
// generation they were started with; writes from an older generation are
// dropped, and so are writes to a record that has reached a terminal status.
type State struct {
	lock       sync.RWMutex
	current    *Deployment
	generation uint64

	subscribersLock sync.RWMutex
	subscribers     map[uint64]chan<- Deployment
	nextSubscriber  uint64
}

func NewState() *State {
	return &State{
		subscribers: make(map[uint64]chan<- Deployment),
	}
}

// Get returns a copy of the current deployment, and false if none exists.
func (s *State) Get() (Deployment, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.current == nil {
		return Deployment{}, false
	}
	return *s.current, true
}

func (s *State) Generation() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.generation
}

// Begin replaces the current deployment and returns its generation.
func (s *State) Begin(d Deployment) uint64 {
	s.lock.Lock()
	s.generation++
	gen := s.generation
	if d.Updated.IsZero() {
		d.Updated = time.Now()
	}
	s.current = &d
	s.lock.Unlock()

	s.broadcast(d)

	return gen
}

// Update sets the status of the current deployment if the generation is still
// current and the deployment has not yet finished. It returns the updated
// record and whether the write happened.
func (s *State) Update(generation uint64, status Status) (Deployment, bool) {
	s.lock.Lock()
	if s.current == nil || generation != s.generation {
		s.lock.Unlock()
		log.WithField("generation", generation).Debugf("Dropping stale deployment status %q", status)
		return Deployment{}, false
	}
	if s.current.Status.Finished() {
		d := *s.current
		s.lock.Unlock()
		return d, false
	}
	if s.current.Status == status {
		d := *s.current
		s.lock.Unlock()
		return d, false
	}
	s.current.Status = status
	s.current.Updated = time.Now()
	d := *s.current
	s.lock.Unlock()

	s.broadcast(d)

	return d, true
}

// Subscribe sends every subsequent write to channel until ctx is done,
// after which the channel is closed. Sends never block the writer; a
// subscriber that is not ready misses the update. Subscriptions sharing a
// ctx are independent; a channel must not be subscribed twice.
func (s *State) Subscribe(ctx context.Context, channel chan<- Deployment) {
	s.subscribersLock.Lock()
	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = channel
	s.subscribersLock.Unlock()

	<-ctx.Done()

	s.subscribersLock.Lock()
	delete(s.subscribers, id)
	s.subscribersLock.Unlock()

	close(channel)
}

// Subscribers returns the number of active subscriptions.
func (s *State) Subscribers() int {
	s.subscribersLock.RLock()
	defer s.subscribersLock.RUnlock()
	return len(s.subscribers)
}

func (s *State) broadcast(d Deployment) {
	s.subscribersLock.RLock()
	defer s.subscribersLock.RUnlock()

	for _, channel := range s.subscribers {
		select {
		case channel <- d:
		default:
			log.WithFields(d.LogFields()).Warn("Subscriber not ready; dropped deployment update")
		}
	}
}
