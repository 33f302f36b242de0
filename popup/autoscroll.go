package popup

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// AutoScrollTick is the delay between two one-line steps
	AutoScrollTick = 80 * time.Millisecond

	// AutoScrollLayoutDelay lets the panel settle before measuring it
	AutoScrollLayoutDelay = 20 * time.Millisecond
)

// Panel is the scrollable description of a card
type Panel interface {
	ScrollHeight() int
	ClientHeight() int
}

// AutoScroller slowly scrolls a panel to its bottom while a card is hovered
type AutoScroller struct {
	panel       Panel
	tick        time.Duration
	layoutDelay time.Duration

	mu     sync.Mutex
	offset int
	run    chan struct{}
}

func NewAutoScroller(panel Panel) *AutoScroller {
	return &AutoScroller{
		panel:       panel,
		tick:        AutoScrollTick,
		layoutDelay: AutoScrollLayoutDelay,
	}
}

// Start restarts scrolling, it does nothing when the content fits in the panel
func (a *AutoScroller) Start() {
	a.Stop()

	a.mu.Lock()
	defer a.mu.Unlock()

	stop := make(chan struct{})
	a.run = stop

	go a.loop(stop)
}

func (a *AutoScroller) loop(stop chan struct{}) {
	select {
	case <-stop:
		return
	case <-time.After(a.layoutDelay):
	}

	if a.panel.ScrollHeight() <= a.panel.ClientHeight() {
		a.finish(stop)
		return
	}

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !a.step(stop) {
				return
			}
		}
	}
}

// step advances one unit, false once the bottom is reached
func (a *AutoScroller) step(stop chan struct{}) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != stop {
		return false
	}

	if a.offset+a.panel.ClientHeight() >= a.panel.ScrollHeight() {
		a.run = nil
		return false
	}

	a.offset++
	return true
}

func (a *AutoScroller) finish(stop chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run == stop {
		a.run = nil
	}
}

func (a *AutoScroller) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.run != nil {
		close(a.run)
		a.run = nil
	}
}

// Running reports whether a scroll is in progress
func (a *AutoScroller) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.run != nil
}

// Offset is the current scroll position of the panel
func (a *AutoScroller) Offset() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.offset
}

const (
	descriptionCharsPerLine = 38
	descriptionVisibleLines = 3
)

// TextPanel measures a description in lines as laid out on a card
type TextPanel struct {
	lines   int
	visible int
}

func NewTextPanel(text string) TextPanel {
	lines := 0

	for _, paragraph := range strings.Split(text, "\n") {
		length := utf8.RuneCountInString(paragraph)
		if length == 0 {
			lines++
			continue
		}

		lines += (length + descriptionCharsPerLine - 1) / descriptionCharsPerLine
	}

	return TextPanel{lines: lines, visible: descriptionVisibleLines}
}

func (p TextPanel) ScrollHeight() int {
	return p.lines
}

func (p TextPanel) ClientHeight() int {
	return p.visible
}
