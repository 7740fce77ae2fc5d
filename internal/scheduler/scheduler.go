// Package scheduler runs the background sweeps: the daily attendance
// claim and the periodic credential token refresh, each over every
// eligible linked account.
package scheduler

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/alexjbarnes/skport-sync/internal/config"
	"github.com/alexjbarnes/skport-sync/internal/store"
	"github.com/alexjbarnes/skport-sync/skport"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of persistence the sweeps need.
type Store interface {
	ListAccounts() ([]store.Account, error)
	ListSigninAccounts() ([]store.Account, error)
	UpdateToken(id, token string) error
	RecordEvent(accountID, source, kind string, payload any) (store.Event, error)
}

// API is the slice of the game client the sweeps need.
type API interface {
	ObtainSession(ctx context.Context, storedToken string) (*skport.Session, error)
	Attendance(ctx context.Context, session *skport.Session, role skport.GameRole) ([]skport.Reward, error)
	AccountToken(ctx context.Context, storedToken string) (string, error)
}

// Notifier delivers best-effort summaries to account owners. A delivery
// failure never fails the account's sweep result.
type Notifier interface {
	NotifyAttendance(ctx context.Context, account store.Account, rewards []skport.Reward) error
}

// AttendancePayload is the event payload recorded for a successful claim.
// Reward is the primary daily reward (awardIds index 0); Bonus holds the
// rest in server order.
type AttendancePayload struct {
	Reward skport.Reward   `json:"reward"`
	Bonus  []skport.Reward `json:"bonus"`
}

// Scheduler drives both sweeps until its context is cancelled.
type Scheduler struct {
	store    Store
	api      API
	notifier Notifier
	logger   *slog.Logger

	attendanceHour   int
	attendanceMinute int
	refreshEvery     time.Duration
	concurrency      int

	// jitter returns the random pre-sweep delay. Swapped out in tests.
	jitter func() time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a Scheduler. notifier may be nil when notifications are not
// configured.
func New(st Store, api API, notifier Notifier, sched config.Schedule, logger *slog.Logger) (*Scheduler, error) {
	hour, minute, err := config.ParseClock(sched.AttendanceAt)
	if err != nil {
		return nil, err
	}

	jitterMax := sched.SweepJitterMax

	return &Scheduler{
		store:            st,
		api:              api,
		notifier:         notifier,
		logger:           logger,
		attendanceHour:   hour,
		attendanceMinute: minute,
		refreshEvery:     sched.RefreshEvery,
		concurrency:      sched.SweepConcurrency,
		jitter: func() time.Duration {
			if jitterMax <= 0 {
				return 0
			}

			return rand.N(jitterMax)
		},
		now: time.Now,
	}, nil
}

// Run blocks, firing the attendance sweep at its daily wall-clock time
// and the refresh sweep on its interval, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.attendanceLoop(gctx)
	})

	g.Go(func() error {
		return s.refreshLoop(gctx)
	})

	return g.Wait()
}

func (s *Scheduler) attendanceLoop(ctx context.Context) error {
	for {
		next := s.nextAttendance()
		s.logger.Info("attendance sweep scheduled", slog.Time("at", next))

		if err := sleepUntil(ctx, next.Sub(s.now())); err != nil {
			return err
		}

		s.RunAttendanceSweep(ctx)
	}
}

func (s *Scheduler) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunTokenRefreshSweep(ctx)
		}
	}
}

// nextAttendance returns the next UTC occurrence of the configured
// wall-clock time strictly after now.
func (s *Scheduler) nextAttendance() time.Time {
	now := s.now().UTC()

	next := time.Date(now.Year(), now.Month(), now.Day(), s.attendanceHour, s.attendanceMinute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// RunAttendanceSweep claims the daily reward for every sign-in-enabled
// account. A random jitter delay spreads load away from the scheduled
// instant. Failures are isolated per account: one account can never
// abort the sweep, and the sweep returns only after every account task
// has settled.
func (s *Scheduler) RunAttendanceSweep(ctx context.Context) {
	if err := sleepUntil(ctx, s.jitter()); err != nil {
		return
	}

	accounts, err := s.store.ListSigninAccounts()
	if err != nil {
		s.logger.Error("attendance sweep: listing accounts", slog.String("error", err.Error()))
		return
	}

	s.logger.Info("attendance sweep starting", slog.Int("accounts", len(accounts)))

	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)

	for _, account := range accounts {
		g.Go(func() error {
			s.claimAttendance(ctx, account)
			return nil
		})
	}

	// Workers swallow their own errors, so this is an all-settled join.
	_ = g.Wait()

	s.logger.Info("attendance sweep finished")
}

func (s *Scheduler) claimAttendance(ctx context.Context, account store.Account) {
	logger := s.logger.With(slog.String("account", account.ID))

	session, err := s.api.ObtainSession(ctx, account.Token)
	if err != nil {
		logger.Warn("attendance: credential chain failed", slog.String("error", err.Error()))
		return
	}

	role := skport.GameRole{ServerID: account.ServerID, RoleID: account.RoleID}

	rewards, err := s.api.Attendance(ctx, session, role)
	if err != nil {
		logger.Warn("attendance: claim failed", slog.String("error", err.Error()))
		return
	}

	if len(rewards) == 0 {
		logger.Warn("attendance: empty reward list")
		return
	}

	payload := AttendancePayload{Reward: rewards[0], Bonus: rewards[1:]}

	if _, err := s.store.RecordEvent(account.ID, store.SourceCron, store.KindAttendance, payload); err != nil {
		logger.Warn("attendance: recording event", slog.String("error", err.Error()))
	}

	if account.Notify && s.notifier != nil {
		if err := s.notifier.NotifyAttendance(ctx, account, rewards); err != nil {
			// Best effort only: a failed delivery must not fail the claim.
			logger.Warn("attendance: notification failed", slog.String("error", err.Error()))
		}
	}

	logger.Debug("attendance: claimed", slog.Int("rewards", len(rewards)))
}

// RunTokenRefreshSweep rotates the stored credential token for every
// linked account, with the same jitter, bounded concurrency and
// per-account isolation as the attendance sweep.
func (s *Scheduler) RunTokenRefreshSweep(ctx context.Context) {
	if err := sleepUntil(ctx, s.jitter()); err != nil {
		return
	}

	accounts, err := s.store.ListAccounts()
	if err != nil {
		s.logger.Error("refresh sweep: listing accounts", slog.String("error", err.Error()))
		return
	}

	s.logger.Info("refresh sweep starting", slog.Int("accounts", len(accounts)))

	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)

	for _, account := range accounts {
		g.Go(func() error {
			s.refreshToken(ctx, account)
			return nil
		})
	}

	_ = g.Wait()

	s.logger.Info("refresh sweep finished")
}

func (s *Scheduler) refreshToken(ctx context.Context, account store.Account) {
	logger := s.logger.With(slog.String("account", account.ID))

	// Validate the stored token end to end before rotating it: a token
	// that cannot complete the chain would be rotated into garbage.
	if _, err := s.api.ObtainSession(ctx, account.Token); err != nil {
		logger.Warn("refresh: credential chain failed", slog.String("error", err.Error()))
		return
	}

	token, err := s.api.AccountToken(ctx, account.Token)
	if err != nil {
		logger.Warn("refresh: rotating token failed", slog.String("error", err.Error()))
		return
	}

	if err := s.store.UpdateToken(account.ID, token); err != nil {
		logger.Warn("refresh: persisting token failed", slog.String("error", err.Error()))
		return
	}

	if _, err := s.store.RecordEvent(account.ID, store.SourceCron, store.KindRefresh, nil); err != nil {
		logger.Warn("refresh: recording event", slog.String("error", err.Error()))
	}

	logger.Debug("refresh: token rotated")
}

// sleepUntil waits for d, returning early with ctx.Err() on cancellation.
func sleepUntil(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
