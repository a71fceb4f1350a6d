// Package broadcast delivers operator announcements to every user in
// the user's own language.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/store"
	"github.com/otabekh/minbar/internal/transport"
)

// Translator renders announcement text into one target language.
type Translator interface {
	Translate(ctx context.Context, text string, target domain.Language) (string, error)
}

// Report summarizes one announcement run.
type Report struct {
	Sent        int                     `json:"sent"`
	Failed      int                     `json:"failed"`
	PerLanguage map[domain.Language]int `json:"per_language"`
	Errors      []string                `json:"errors,omitempty"`
	// Fallbacks lists languages whose translation failed; those
	// users received the source text verbatim.
	Fallbacks []domain.Language `json:"fallbacks,omitempty"`
}

type Service struct {
	store      *store.DB
	sender     transport.Sender
	translator Translator
	operator   auth.Operator
	log        *logger.Logger

	// Pacing knobs, lowered in tests.
	BatchSize  int
	BatchPause time.Duration
	SendDelay  time.Duration
	RetryLimit int
}

func NewService(db *store.DB, sender transport.Sender, translator Translator, operator auth.Operator, log *logger.Logger) *Service {
	return &Service{
		store:      db,
		sender:     sender,
		translator: translator,
		operator:   operator,
		log:        log.WithComponent("broadcast"),

		BatchSize:  constants.BroadcastBatchSize,
		BatchPause: constants.BroadcastBatchPause,
		SendDelay:  constants.BroadcastSendDelay,
		RetryLimit: constants.BroadcastRetryLimit,
	}
}

type groupResult struct {
	sent   int
	failed int
	errors []string
}

// Announce translates text once per language and fans the copies out
// to every registered user, grouped by preferred language. Users who
// never picked a language get the Russian copy. Per-user failures are
// retried and then recorded; they never abort the run.
func (s *Service) Announce(ctx context.Context, callerID int64, text string, source domain.Language) (*Report, error) {
	if err := s.operator.Require(callerID); err != nil {
		return nil, err
	}

	report := &Report{PerLanguage: make(map[domain.Language]int)}

	copies := make(map[domain.Language]string, 4)
	for _, lang := range domain.Languages() {
		if lang == source {
			copies[lang] = text
			continue
		}
		translated, err := s.translator.Translate(ctx, text, lang)
		if err != nil {
			s.log.Warn("translation failed, sending source text", "language", lang, "error", err)
			copies[lang] = text
			report.Fallbacks = append(report.Fallbacks, lang)
			continue
		}
		copies[lang] = translated
	}

	users, err := s.store.ListUsers()
	if err != nil {
		return nil, err
	}

	groups := make(map[domain.Language][]int64)
	for _, u := range users {
		lang := domain.LangRU
		if u.Language != nil {
			lang = *u.Language
		}
		groups[lang] = append(groups[lang], u.ID)
	}

	s.log.Info("starting broadcast", "users", len(users), "groups", len(groups))

	results := make(map[domain.Language]*groupResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for lang, ids := range groups {
		result := &groupResult{}
		results[lang] = result
		body := copies[lang]
		recipients := ids
		g.Go(func() error {
			return s.sendGroup(gctx, body, recipients, result)
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for lang, result := range results {
		report.Sent += result.sent
		report.Failed += result.failed
		report.PerLanguage[lang] = result.sent
		report.Errors = append(report.Errors, result.errors...)
	}

	s.log.Info("broadcast finished", "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

func (s *Service) sendGroup(ctx context.Context, body string, recipients []int64, result *groupResult) error {
	for i, userID := range recipients {
		if i > 0 {
			if err := sleepCtx(ctx, s.SendDelay); err != nil {
				return err
			}
		}
		if i > 0 && i%s.BatchSize == 0 {
			if err := sleepCtx(ctx, s.BatchPause); err != nil {
				return err
			}
		}

		if err := s.sendWithRetry(ctx, userID, body); err != nil {
			result.failed++
			result.errors = append(result.errors, fmt.Sprintf("user %d: %v", userID, err))
			continue
		}
		result.sent++
	}
	return nil
}

func (s *Service) sendWithRetry(ctx context.Context, userID int64, body string) error {
	var err error
	for attempt := 1; attempt <= s.RetryLimit; attempt++ {
		err = s.sender.SendText(ctx, userID, body)
		if err == nil {
			return nil
		}
		if attempt < s.RetryLimit {
			if sleepErr := sleepCtx(ctx, s.SendDelay); sleepErr != nil {
				return sleepErr
			}
		}
	}
	return err
}

// ErrorPreview returns up to the preview cap of error strings and the
// overflow count.
func (r *Report) ErrorPreview() ([]string, int) {
	if len(r.Errors) <= constants.ReportPreviewSize {
		return r.Errors, 0
	}
	return r.Errors[:constants.ReportPreviewSize], len(r.Errors) - constants.ReportPreviewSize
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
