package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bin_collection_notifier/internal/domain/browser"
	"bin_collection_notifier/internal/domain/notification"
)

// --- browser fakes ---

type fakeFrame struct {
	controls           []browser.Control
	controlsAfterClick []browser.Control // revealed by a start-action click
	actions            []browser.Action
	selects            []browser.SelectState
	selectsAfterType   bool // options appear only once the address was typed
	tables             []browser.Table
	text               string
	clearErr           error

	clicked  []string
	cleared  []string
	pressed  []string
	typed    string
	typedSel string
	chosen   []string
}

func (f *fakeFrame) Controls(context.Context) ([]browser.Control, error) {
	if len(f.clicked) > 0 && f.controlsAfterClick != nil {
		return f.controlsAfterClick, nil
	}
	return f.controls, nil
}

func (f *fakeFrame) Actions(context.Context) ([]browser.Action, error) { return f.actions, nil }

func (f *fakeFrame) Selects(context.Context) ([]browser.SelectState, error) {
	if f.selectsAfterType && f.typed == "" {
		return nil, nil
	}
	return f.selects, nil
}

func (f *fakeFrame) Tables(context.Context) ([]browser.Table, error) { return f.tables, nil }

func (f *fakeFrame) VisibleText(context.Context) (string, error) { return f.text, nil }

func (f *fakeFrame) Click(_ context.Context, selector string) error {
	f.clicked = append(f.clicked, selector)
	return nil
}

func (f *fakeFrame) ClearValue(_ context.Context, selector string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, selector)
	return nil
}

func (f *fakeFrame) Press(_ context.Context, selector, key string) error {
	f.pressed = append(f.pressed, selector+":"+key)
	return nil
}

func (f *fakeFrame) TypeText(_ context.Context, selector, text string, _ time.Duration) error {
	f.typedSel = selector
	f.typed = text
	return nil
}

func (f *fakeFrame) ChooseOption(_ context.Context, selector string, index int) error {
	f.chosen = append(f.chosen, fmt.Sprintf("%s:%d", selector, index))
	return nil
}

type fakePage struct {
	frame      *fakeFrame
	bySelector bool // frame reachable through the known container selector
	closed     bool
}

func (p *fakePage) FrameBySelector(context.Context, string) (browser.Frame, error) {
	if p.bySelector && p.frame != nil {
		return p.frame, nil
	}
	return nil, errors.New("frame not attached")
}

func (p *fakePage) Frames(context.Context) ([]browser.Frame, error) {
	if p.frame == nil {
		return nil, nil
	}
	return []browser.Frame{p.frame}, nil
}

func (p *fakePage) Close(context.Context) error {
	p.closed = true
	return nil
}

type fakeBrowser struct {
	pages    []*fakePage
	openErrs []error // consumed per Open call before pages are handed out
	opens    int
}

func (b *fakeBrowser) Open(context.Context, string) (browser.Page, error) {
	i := b.opens
	b.opens++
	if i < len(b.openErrs) && b.openErrs[i] != nil {
		return nil, b.openErrs[i]
	}
	if len(b.pages) == 0 {
		return nil, errors.New("no page configured")
	}
	if i < len(b.pages) {
		return b.pages[i], nil
	}
	return b.pages[len(b.pages)-1], nil
}

func (b *fakeBrowser) Close(context.Context) error { return nil }

// fastTimings keeps navigator polling loops in the millisecond range.
func fastTimings() Timings {
	return Timings{
		PollInterval:       2 * time.Millisecond,
		FrameDeadline:      40 * time.Millisecond,
		OpenFormDeadline:   20 * time.Millisecond,
		SuggestionSettle:   time.Millisecond,
		SuggestionDeadline: 40 * time.Millisecond,
		ResultsDeadline:    40 * time.Millisecond,
		TypeKeyDelay:       0,
	}
}

// --- collaborator fakes ---

type memStateRepo struct {
	states map[string]*notification.State
	getErr error
	putErr error
	puts   int
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]*notification.State)}
}

func (r *memStateRepo) Get(_ context.Context, key string) (*notification.State, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	st, ok := r.states[key]
	if !ok {
		return nil, notification.ErrStateNotFound
	}
	return st, nil
}

func (r *memStateRepo) Put(_ context.Context, st *notification.State) error {
	r.puts++
	if r.putErr != nil {
		return r.putErr
	}
	r.states[st.AddressKey] = st
	return nil
}

type sentMail struct {
	to      string
	subject string
	plain   string
	html    string
}

type fakeSender struct {
	sent    []sentMail
	failFor map[string]error // per-recipient failures
}

func (s *fakeSender) Send(_ context.Context, to, subject, plain, html string) (string, error) {
	if err, ok := s.failFor[to]; ok {
		return "", err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, plain: plain, html: html})
	return fmt.Sprintf("<fake-%d>", len(s.sent)), nil
}

type fakeAside struct {
	text string
	err  error
}

func (a *fakeAside) FetchOne(context.Context) (string, error) { return a.text, a.err }
