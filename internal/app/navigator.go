package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bin_collection_notifier/internal/domain/browser"

	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// Navigation states, in order. A NavigationError names the transition that
// failed so the orchestrator can log it and move to the next address.
const (
	StateFrameNotFound         = "FrameNotFound"
	StateAddressInputNotFound  = "AddressInputNotFound"
	StateNoSuggestionPopulated = "NoSuggestionPopulated"
	StateResultsTimeout        = "ResultsTimeout"
)

// NavigationError is a per-state failure while driving the form. Caught per
// address; it never aborts the run.
type NavigationError struct {
	State string
	Err   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed at %s: %v", e.State, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// The embedded form's container, when the site renders the layout we know.
const formFrameSelector = "#collection-lookup iframe"

// Preliminary action labels some deployments of the form require before the
// address input appears. Tried in order, fuzzy-matched, best effort.
var startActionLabels = []string{"Start", "Next", "Begin", "Start now", "Find your collection"}

// Timings bounds every wait in the machine. Results get the longest
// deadline; they depend on a slow backend lookup on the council side.
type Timings struct {
	PollInterval       time.Duration
	FrameDeadline      time.Duration
	OpenFormDeadline   time.Duration
	SuggestionSettle   time.Duration
	SuggestionDeadline time.Duration
	ResultsDeadline    time.Duration
	TypeKeyDelay       time.Duration
}

// DefaultTimings are tuned against the live form's observed behavior.
func DefaultTimings() Timings {
	return Timings{
		PollInterval:       500 * time.Millisecond,
		FrameDeadline:      20 * time.Second,
		OpenFormDeadline:   5 * time.Second,
		SuggestionSettle:   1500 * time.Millisecond,
		SuggestionDeadline: 25 * time.Second,
		ResultsDeadline:    60 * time.Second,
		TypeKeyDelay:       75 * time.Millisecond,
	}
}

// Navigator drives the third-party form from a freshly loaded page to
// rendered results. A linear state machine with a bounded, cancellable
// polling wait at every transition; the form's load timing and layout are
// not under our control.
type Navigator struct {
	log     *logrus.Logger
	timings Timings
}

func NewNavigator(log *logrus.Logger) *Navigator {
	return &Navigator{log: log, timings: DefaultTimings()}
}

// NewNavigatorWithTimings is for tests and unusually slow deployments.
func NewNavigatorWithTimings(log *logrus.Logger, t Timings) *Navigator {
	return &Navigator{log: log, timings: t}
}

// ResultsFor walks the machine for one address and returns the frame with
// the rendered results table.
func (n *Navigator) ResultsFor(ctx context.Context, page browser.Page, addressLabel string) (browser.Frame, error) {
	frame, err := n.locateFrame(ctx, page)
	if err != nil {
		return nil, &NavigationError{State: StateFrameNotFound, Err: err}
	}
	n.openForm(ctx, frame)
	if err := n.typeAddress(ctx, frame, addressLabel); err != nil {
		return nil, err
	}
	if err := n.selectSuggestion(ctx, frame); err != nil {
		return nil, &NavigationError{State: StateNoSuggestionPopulated, Err: err}
	}
	if err := n.awaitResults(ctx, frame); err != nil {
		return nil, &NavigationError{State: StateResultsTimeout, Err: err}
	}
	return frame, nil
}

// locateFrame finds the embedded form frame: first by the known container
// selector, then by scanning all frames for one containing input elements.
func (n *Navigator) locateFrame(ctx context.Context, page browser.Page) (browser.Frame, error) {
	var frame browser.Frame
	backoff := retry.WithMaxDuration(n.timings.FrameDeadline, retry.NewConstant(n.timings.PollInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if f, err := page.FrameBySelector(ctx, formFrameSelector); err == nil {
			frame = f
			return nil
		}
		frames, err := page.Frames(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		for _, f := range frames {
			controls, err := f.Controls(ctx)
			if err == nil && len(controls) > 0 {
				frame = f
				return nil
			}
		}
		return retry.RetryableError(fmt.Errorf("no input-bearing frame yet"))
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// openForm clicks a preliminary "start" action when one is present. Best
// effort: if no candidate label matches, the form is assumed already open.
func (n *Navigator) openForm(ctx context.Context, frame browser.Frame) {
	actions, err := frame.Actions(ctx)
	if err != nil {
		n.log.WithError(err).Debug("could not list actions; assuming form already open")
		return
	}
	for _, label := range startActionLabels {
		sel, ok := matchAction(actions, label)
		if !ok {
			continue
		}
		if err := frame.Click(ctx, sel); err != nil {
			n.log.WithError(err).WithField("label", label).Debug("start action click failed")
			continue
		}
		// The click counts only if it produced an input-bearing DOM.
		backoff := retry.WithMaxDuration(n.timings.OpenFormDeadline, retry.NewConstant(n.timings.PollInterval))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			controls, err := frame.Controls(ctx)
			if err != nil || len(controls) == 0 {
				return retry.RetryableError(fmt.Errorf("no inputs after start action"))
			}
			return nil
		})
		if err == nil {
			n.log.WithField("label", label).Debug("form opened via start action")
			return
		}
	}
}

// matchAction finds an action whose label fuzzily matches the candidate:
// case-insensitive, trimmed, exact or substring either way.
func matchAction(actions []browser.Action, candidate string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(candidate))
	for _, a := range actions {
		have := strings.ToLower(strings.TrimSpace(a.Label))
		if have == "" {
			continue
		}
		if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
			return a.Selector, true
		}
	}
	return "", false
}

// typeAddress picks the most plausible address control and types the label
// into it, clearing any existing content first.
func (n *Navigator) typeAddress(ctx context.Context, frame browser.Frame, label string) error {
	controls, err := frame.Controls(ctx)
	if err != nil {
		return &NavigationError{State: StateAddressInputNotFound, Err: err}
	}
	ranked := RankAddressInputs(controls)
	if len(ranked) == 0 {
		return &NavigationError{State: StateAddressInputNotFound, Err: fmt.Errorf("no visible input candidates")}
	}
	sel := ranked[0].Selector
	if err := frame.ClearValue(ctx, sel); err != nil {
		// Fall back to simulated select-all + delete.
		if err := frame.Press(ctx, sel, "Control+A"); err == nil {
			_ = frame.Press(ctx, sel, "Delete")
		}
	}
	if err := frame.TypeText(ctx, sel, label, n.timings.TypeKeyDelay); err != nil {
		return &NavigationError{State: StateAddressInputNotFound, Err: fmt.Errorf("typing address: %w", err)}
	}
	return nil
}

// selectSuggestion waits for the dependent select to populate with at least
// one non-empty option and picks the first one.
func (n *Navigator) selectSuggestion(ctx context.Context, frame browser.Frame) error {
	if err := sleepCtx(ctx, n.timings.SuggestionSettle); err != nil {
		return err
	}
	backoff := retry.WithMaxDuration(n.timings.SuggestionDeadline, retry.NewConstant(n.timings.PollInterval))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		selects, err := frame.Selects(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		for _, s := range selects {
			for i, opt := range s.Options {
				if strings.TrimSpace(opt) == "" {
					continue
				}
				if err := frame.ChooseOption(ctx, s.Selector, i); err != nil {
					return retry.RetryableError(fmt.Errorf("choosing option: %w", err))
				}
				return nil
			}
		}
		return retry.RetryableError(fmt.Errorf("no populated suggestion select yet"))
	})
}

// awaitResults polls for a results table with at least one data row. The
// deadline is the longest of any state; results come from a slow backend
// lookup on the council side.
func (n *Navigator) awaitResults(ctx context.Context, frame browser.Frame) error {
	backoff := retry.WithCappedDuration(2*time.Second,
		retry.WithMaxDuration(n.timings.ResultsDeadline, retry.NewExponential(n.timings.PollInterval)))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tables, err := frame.Tables(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		for _, t := range tables {
			if len(t.Rows) > 0 {
				return nil
			}
		}
		return retry.RetryableError(fmt.Errorf("no results table with rows yet"))
	})
}

// Snapshot captures what the extractor needs from the results frame.
func (n *Navigator) Snapshot(ctx context.Context, frame browser.Frame) ([]browser.Table, string, error) {
	tables, err := frame.Tables(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot tables: %w", err)
	}
	text, err := frame.VisibleText(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot text: %w", err)
	}
	return tables, text, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
