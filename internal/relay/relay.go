// Package relay carries messages between end users and the operator
// through durable threads. A thread is identified by the (operator,
// user) pair and is created at most once.
package relay

import (
	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/session"
	"github.com/otabekh/minbar/internal/store"
)

type Service struct {
	store    *store.DB
	sessions *session.Registry
	operator auth.Operator
	log      *logger.Logger
}

func NewService(db *store.DB, sessions *session.Registry, operator auth.Operator, log *logger.Logger) *Service {
	return &Service{
		store:    db,
		sessions: sessions,
		operator: operator,
		log:      log.WithComponent("relay"),
	}
}

// EnterChat opens (or reopens) the user's exchange with the operator
// and returns the thread id. Each entry starts a fresh exchange, so
// the next user message pings the operator again.
func (s *Service) EnterChat(userID int64) (int64, error) {
	threadID, err := s.store.GetOrCreateThread(s.operator.ID, userID)
	if err != nil {
		return 0, err
	}
	s.sessions.EnterChat(userID)
	s.log.WithUser(userID).Info("user entered chat", "thread_id", threadID)
	return threadID, nil
}

func (s *Service) ExitChat(userID int64) {
	s.sessions.ExitChat(userID)
	s.log.WithUser(userID).Info("user left chat")
}

func (s *Service) InChat(userID int64) bool {
	return s.sessions.InChat(userID)
}

// UserMessage appends an inbound message to the user's thread.
// notifyOperator is true only for the first message of the current
// exchange; a rapid sequence of messages pings the operator once.
func (s *Service) UserMessage(userID int64, body string) (threadID int64, notifyOperator bool, err error) {
	threadID, err = s.store.GetOrCreateThread(s.operator.ID, userID)
	if err != nil {
		return 0, false, err
	}
	if err := s.store.AppendMessage(threadID, userID, body, false); err != nil {
		return 0, false, err
	}
	return threadID, s.sessions.MarkOperatorNotified(userID), nil
}

// OperatorMessage appends an outbound reply to the given user's
// thread. Callers other than the operator are rejected.
func (s *Service) OperatorMessage(callerID, userID int64, body string) (int64, error) {
	if err := s.operator.Require(callerID); err != nil {
		return 0, err
	}
	threadID, err := s.store.GetOrCreateThread(s.operator.ID, userID)
	if err != nil {
		return 0, err
	}
	if err := s.store.AppendMessage(threadID, callerID, body, true); err != nil {
		return 0, err
	}
	return threadID, nil
}

// History returns the thread's messages newest-first. limit <= 0
// applies the default.
func (s *Service) History(userID int64, limit int) ([]*domain.Message, error) {
	threadID, err := s.store.GetOrCreateThread(s.operator.ID, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListMessages(threadID, limit)
}
