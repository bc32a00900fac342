// Package browser defines the capability interface through which the
// application drives a headless browser. The runtime itself (navigation,
// rendering) lives in an external driver that registers an implementation
// at startup; nothing in this repository talks to a real browser directly.
package browser

import (
	"context"
	"errors"
	"time"
)

// Browser owns a running browser instance and hands out pages.
type Browser interface {
	Open(ctx context.Context, url string) (Page, error)
	Close(ctx context.Context) error
}

// Page is a loaded top-level document.
type Page interface {
	// FrameBySelector returns the frame hosted by the container matching
	// the selector, or an error if no such frame is currently attached.
	FrameBySelector(ctx context.Context, selector string) (Frame, error)
	// Frames returns every frame currently attached to the page.
	Frames(ctx context.Context) ([]Frame, error)
	Close(ctx context.Context) error
}

// Frame exposes a document (main frame or iframe) as snapshots plus a small
// set of interactions. Snapshot methods return plain values so that element
// selection logic can stay pure and unit-testable.
type Frame interface {
	// Controls lists the input-like elements in the frame.
	Controls(ctx context.Context) ([]Control, error)
	// Actions lists clickable elements (buttons, links, submit inputs)
	// with their visible labels.
	Actions(ctx context.Context) ([]Action, error)
	// Selects lists the select elements and their current options.
	Selects(ctx context.Context) ([]SelectState, error)
	// Tables lists the tables currently rendered in the frame.
	Tables(ctx context.Context) ([]Table, error)
	// VisibleText returns the frame's rendered text content.
	VisibleText(ctx context.Context) (string, error)

	Click(ctx context.Context, selector string) error
	// ClearValue resets an input's value directly.
	ClearValue(ctx context.Context, selector string) error
	// Press sends a single key or key combination (e.g. "Control+A") to
	// the element.
	Press(ctx context.Context, selector, key string) error
	// TypeText types into the element with a delay between keystrokes so
	// live-lookup handlers fire.
	TypeText(ctx context.Context, selector, text string, keyDelay time.Duration) error
	// ChooseOption selects the option at the given index and fires the
	// change and input events.
	ChooseOption(ctx context.Context, selector string, index int) error
}

// Control is a snapshot of one input-like element and the attributes the
// address-input locator scores on.
type Control struct {
	Selector    string
	Name        string
	ID          string
	Placeholder string
	Class       string
	Type        string
	ContextText string // text of the surrounding container
	Visible     bool
}

// Action is a snapshot of one clickable element.
type Action struct {
	Selector string
	Label    string
}

// SelectState is a snapshot of one select element.
type SelectState struct {
	Selector string
	Options  []string
}

// Table is a snapshot of one rendered table: its cell text by row plus the
// outer markup, retained verbatim for inclusion in outgoing messages.
type Table struct {
	Selector string
	ID       string
	HTML     string
	Rows     [][]string
}

// ErrNoRuntime is returned by Acquire when no driver has registered itself.
var ErrNoRuntime = errors.New("no browser runtime registered")

var runtimeFactory func(ctx context.Context) (Browser, error)

// RegisterRuntime installs the factory an external headless driver provides.
// Expected to be called once from the driver's init.
func RegisterRuntime(f func(ctx context.Context) (Browser, error)) {
	runtimeFactory = f
}

// Acquire starts a browser via the registered runtime. Failure here is fatal
// to a run: without a browser there is nothing to scrape.
func Acquire(ctx context.Context) (Browser, error) {
	if runtimeFactory == nil {
		return nil, ErrNoRuntime
	}
	return runtimeFactory(ctx)
}
