// Package session holds per-user conversational state that must not
// outlive the process: chat-mode flags, the performer currently in
// view, and an operator's in-progress sequential batch. Durable state
// belongs in the store, never here.
package session

import (
	"sync"

	"github.com/otabekh/minbar/internal/ingest"
)

type state struct {
	inChat           bool
	operatorNotified bool
	currentPerformer int64
	pendingBatch     *ingest.Batch
}

// Registry is a mutex-guarded map of user id to session state. The
// zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*state
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*state)}
}

func (r *Registry) get(userID int64) *state {
	s, ok := r.sessions[userID]
	if !ok {
		s = &state{}
		r.sessions[userID] = s
	}
	return s
}

// EnterChat puts the user into chat mode and clears the notified flag
// so the next message pings the operator again.
func (r *Registry) EnterChat(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(userID)
	s.inChat = true
	s.operatorNotified = false
}

func (r *Registry) ExitChat(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(userID)
	s.inChat = false
	s.operatorNotified = false
}

func (r *Registry) InChat(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(userID).inChat
}

// MarkOperatorNotified records that the operator has been pinged for
// the current exchange. Returns false if the ping already happened.
func (r *Registry) MarkOperatorNotified(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(userID)
	if s.operatorNotified {
		return false
	}
	s.operatorNotified = true
	return true
}

func (r *Registry) SetCurrentPerformer(userID, performerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(userID).currentPerformer = performerID
}

// CurrentPerformer returns the performer the user is browsing, or 0.
func (r *Registry) CurrentPerformer(userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(userID).currentPerformer
}

// StartBatch attaches a fresh sequential batch to the user, replacing
// any previous one. The replaced batch, if still open, is cancelled.
func (r *Registry) StartBatch(userID int64, b *ingest.Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(userID)
	if s.pendingBatch != nil {
		s.pendingBatch.Cancel()
	}
	s.pendingBatch = b
}

func (r *Registry) Batch(userID int64) *ingest.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(userID).pendingBatch
}

// TakeBatch detaches and returns the user's pending batch, or nil.
func (r *Registry) TakeBatch(userID int64) *ingest.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(userID)
	b := s.pendingBatch
	s.pendingBatch = nil
	return b
}

// Clear drops all state for the user.
func (r *Registry) Clear(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok && s.pendingBatch != nil {
		s.pendingBatch.Cancel()
	}
	delete(r.sessions, userID)
}
