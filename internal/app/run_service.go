package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bin_collection_notifier/internal/domain/browser"
	"bin_collection_notifier/internal/domain/email"
	"bin_collection_notifier/internal/domain/notification"
	"bin_collection_notifier/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

// AsideProvider fetches the optional one-line extra included in messages.
// Best effort and independently time-boxed; failure never touches the run.
type AsideProvider interface {
	FetchOne(ctx context.Context) (string, error)
}

const asideTimeout = 10 * time.Second

// RunOptions is the per-invocation override surface (the event payload).
type RunOptions struct {
	ForceNotify bool
}

// RunService sequences the whole pipeline across all configured addresses:
// navigate, extract, decide, compose, send, persist. Addresses run strictly
// sequentially; the browser capability is a single shared instance.
type RunService struct {
	browser   browser.Browser
	nav       *Navigator
	states    notification.Repository
	sender    email.Sender
	aside     AsideProvider // optional
	addresses []notification.AddressConfig
	loc       *time.Location
	sourceURL string
	suffix    string
	log       *logrus.Logger
	now       func() time.Time
}

func NewRunService(
	b browser.Browser,
	nav *Navigator,
	states notification.Repository,
	sender email.Sender,
	aside AsideProvider,
	addresses []notification.AddressConfig,
	loc *time.Location,
	sourceURL string,
	suffix string,
	log *logrus.Logger,
) *RunService {
	return &RunService{
		browser:   b,
		nav:       nav,
		states:    states,
		sender:    sender,
		aside:     aside,
		addresses: addresses,
		loc:       loc,
		sourceURL: sourceURL,
		suffix:    suffix,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one complete pass. Per-address and per-recipient failures are
// isolated into outcomes; the run itself succeeds if the address loop
// completes. Only the caller's ctx expiring can cut it short.
func (s *RunService) Run(ctx context.Context, opts RunOptions) (*notification.RunSummary, error) {
	summary := &notification.RunSummary{StartedAt: s.now().In(s.loc), Force: opts.ForceNotify}
	rc := notification.NewRunContext(summary.StartedAt, s.loc, opts.ForceNotify)
	s.log.WithFields(logrus.Fields{
		"target_date": rc.TargetDate.Format("2006-01-02"),
		"force":       rc.Force,
		"addresses":   len(s.addresses),
	}).Info("run starting")

	// The fetch runs concurrently with the scraping work; awaited lazily,
	// just before the first message is composed.
	asideCh := s.startAsideFetch(ctx)
	aside := newLazyAside(ctx, asideCh)

	for _, addr := range s.addresses {
		outcome := s.processAddress(ctx, addr, rc, aside)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if ctx.Err() != nil {
			break
		}
	}

	summary.FinishedAt = s.now().In(s.loc)
	s.log.Info(summary.String())
	return summary, nil
}

func (s *RunService) processAddress(ctx context.Context, addr notification.AddressConfig, rc notification.RunContext, aside func() string) notification.Outcome {
	log := s.log.WithField("address", addr.Label)

	sched, err := s.scrape(ctx, addr.Label)
	if err != nil {
		log.WithError(err).Error("scrape failed; moving to next address")
		return notification.Outcome{Label: addr.Label, Status: notification.OutcomeFailed, Err: err}
	}
	if len(sched.Entries) == 0 {
		// Empty extraction is not an error: nothing to announce.
		log.Warn("no collection entries extracted")
		return notification.Outcome{Label: addr.Label, Status: notification.OutcomeSkipped, Reason: "no collections found"}
	}

	key := notification.AddressKey(addr.Label)
	prior := s.fetchState(ctx, key, log)
	decision := notification.Decide(sched, rc, prior)
	if !decision.Announce {
		log.WithField("reason", decision.Reason).Info("no notification due")
		return notification.Outcome{Label: addr.Label, Status: notification.OutcomeSkipped, Reason: decision.Reason}
	}

	msg := Compose(decision.AnnounceDate, decision.IsTarget, addr.Label, decision.Bins, s.suffix, sched.TableHTML, aside())
	delivered := 0
	var lastErr error
	for _, to := range addr.Recipients {
		id, err := s.sender.Send(ctx, to, msg.Subject, msg.PlainText, msg.HTMLBody)
		if err != nil {
			lastErr = err
			log.WithError(err).WithField("to", to).Error("send failed; continuing with remaining recipients")
			continue
		}
		delivered++
		log.WithFields(logrus.Fields{"to": to, "message_id": id}).Info("notification sent")
	}

	// State advances only on the non-forced target-date path, only after at
	// least one recipient accepted the message, and never before sending.
	if !rc.Force && decision.IsTarget && delivered > 0 {
		st := &notification.State{
			AddressKey:   key,
			LastNotified: rc.TargetDate,
			Snapshot:     notification.TruncateSnapshot(sched.Summary()),
		}
		if err := s.states.Put(ctx, st); err != nil {
			// A failed write risks a duplicate next run; safer than
			// suppressing a notification by failing the address.
			log.WithError(err).Error("state write failed")
		}
	}

	if delivered == 0 {
		return notification.Outcome{
			Label:  addr.Label,
			Status: notification.OutcomeFailed,
			Err:    fmt.Errorf("all %d recipients failed: %w", len(addr.Recipients), lastErr),
		}
	}
	return notification.Outcome{
		Label:        addr.Label,
		Status:       notification.OutcomeSent,
		AnnounceDate: decision.AnnounceDate,
		Recipients:   len(addr.Recipients),
		Delivered:    delivered,
	}
}

func (s *RunService) scrape(ctx context.Context, label string) (schedule.Schedule, error) {
	page, err := s.browser.Open(ctx, s.sourceURL)
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("opening collection page: %w", err)
	}
	defer func() {
		if err := page.Close(ctx); err != nil {
			s.log.WithError(err).Debug("page close failed")
		}
	}()

	frame, err := s.nav.ResultsFor(ctx, page, label)
	if err != nil {
		return schedule.Schedule{}, err
	}
	tables, text, err := s.nav.Snapshot(ctx, frame)
	if err != nil {
		return schedule.Schedule{}, err
	}
	return schedule.Extract(tables, text, s.loc), nil
}

// fetchState reads prior state, treating both absence and read failure as
// "not previously notified": suppressing a due notification is the worse
// failure mode.
func (s *RunService) fetchState(ctx context.Context, key string, log *logrus.Entry) *notification.State {
	st, err := s.states.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, notification.ErrStateNotFound) {
			log.WithError(err).Warn("state read failed; treating as never notified")
		}
		return nil
	}
	return st
}

// startAsideFetch kicks off the supplementary text fetch concurrently with
// the scraping work. Hard timeout; errors swallowed.
func (s *RunService) startAsideFetch(ctx context.Context) <-chan string {
	ch := make(chan string, 1)
	if s.aside == nil {
		ch <- ""
		return ch
	}
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, asideTimeout)
		defer cancel()
		text, err := s.aside.FetchOne(fetchCtx)
		if err != nil {
			s.log.WithError(err).Debug("supplementary text fetch failed")
			text = ""
		}
		ch <- text
	}()
	return ch
}

// newLazyAside memoizes the first receive so later addresses reuse it.
func newLazyAside(ctx context.Context, ch <-chan string) func() string {
	resolved := false
	text := ""
	return func() string {
		if resolved {
			return text
		}
		resolved = true
		select {
		case text = <-ch:
		case <-ctx.Done():
		}
		return text
	}
}
