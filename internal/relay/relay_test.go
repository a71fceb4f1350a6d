package relay

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/session"
	"github.com/otabekh/minbar/internal/store"
)

const operatorID = 99

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewService(db, session.NewRegistry(), auth.Operator{ID: operatorID}, logger.Default())
}

func TestSingleThreadPerUser(t *testing.T) {
	svc := setupService(t)

	first, err := svc.EnterChat(1)
	if err != nil {
		t.Fatalf("EnterChat: %v", err)
	}
	svc.ExitChat(1)
	second, err := svc.EnterChat(1)
	if err != nil {
		t.Fatalf("second EnterChat: %v", err)
	}
	if first != second {
		t.Errorf("thread ids %d and %d, want the same thread reused", first, second)
	}
}

func TestFirstMessagePingsOnce(t *testing.T) {
	svc := setupService(t)

	if _, err := svc.EnterChat(1); err != nil {
		t.Fatalf("EnterChat: %v", err)
	}

	_, notify, err := svc.UserMessage(1, "salom")
	if err != nil {
		t.Fatalf("UserMessage: %v", err)
	}
	if !notify {
		t.Error("first message should ping the operator")
	}

	_, notify, err = svc.UserMessage(1, "yana bir savol")
	if err != nil {
		t.Fatalf("second UserMessage: %v", err)
	}
	if notify {
		t.Error("second message in the same exchange should not ping")
	}

	// Re-entering chat starts a new exchange.
	if _, err := svc.EnterChat(1); err != nil {
		t.Fatalf("re-EnterChat: %v", err)
	}
	_, notify, err = svc.UserMessage(1, "qaytib keldim")
	if err != nil {
		t.Fatalf("third UserMessage: %v", err)
	}
	if !notify {
		t.Error("first message after re-entry should ping again")
	}
}

func TestConversationHistory(t *testing.T) {
	svc := setupService(t)

	if _, _, err := svc.UserMessage(1, "question"); err != nil {
		t.Fatalf("UserMessage: %v", err)
	}
	if _, err := svc.OperatorMessage(operatorID, 1, "answer"); err != nil {
		t.Fatalf("OperatorMessage: %v", err)
	}

	history, err := svc.History(1, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if !history[0].FromOperator || history[0].Body != "answer" {
		t.Errorf("newest message = %+v, want operator's answer", history[0])
	}
	if history[1].FromOperator {
		t.Error("oldest message should be the user's")
	}
}

func TestOperatorMessageAuthorization(t *testing.T) {
	svc := setupService(t)

	_, err := svc.OperatorMessage(7, 1, "fake reply")
	var authErr *domain.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("error type = %T, want *domain.AuthorizationError", err)
	}

	history, err := svc.History(1, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Error("rejected message must not be appended")
	}
}
