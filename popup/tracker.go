package popup

import (
	"sync"
	"time"

	"github.com/portfolio-site/showcase/model"
)

type State int

const (
	Idle State = iota
	Hovering
)

func (s State) String() string {
	if s == Hovering {
		return "hovering"
	}

	return "idle"
}

// Message is the auxiliary overlay opened from a hovered card
type Message struct {
	RepoName  string                `json:"repoName"`
	Languages []model.LanguageShare `json:"languages"`
}

// Snapshot is what the grid needs to render the preview
type Snapshot struct {
	State     string            `json:"state"`
	Scrolling bool              `json:"scrolling"`
	Visible   bool              `json:"visible"`
	Repo      *model.Repository `json:"repo,omitempty"`
	Position  *Position         `json:"position,omitempty"`
	Message   *Message          `json:"message,omitempty"`

	DescriptionOffset int `json:"descriptionOffset"`
}

// Tracker owns the hover state of one card grid
// scrolling hides everything and keeps the preview hidden until the quiet period elapsed
type Tracker struct {
	quietPeriod time.Duration

	mu        sync.Mutex
	hovered   *model.Repository
	position  Position
	message   *Message
	scrolling bool
	timer     *time.Timer
	closed    bool

	description *AutoScroller
}

func NewTracker(quietPeriod time.Duration) *Tracker {
	return &Tracker{quietPeriod: quietPeriod}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hovered == nil {
		return Idle
	}

	return Hovering
}

// Enter records the hovered card and its preview position
func (t *Tracker) Enter(repo model.Repository, target Rect, container Rect) Position {
	position := ComputePosition(target, container)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hovered == nil || t.hovered.ID != repo.ID {
		t.message = nil
		t.stopDescription()

		t.description = NewAutoScroller(NewTextPanel(repo.DescriptionOrDefault()))
		t.description.Start()
	}

	t.hovered = &repo
	t.position = position

	return position
}

// Leave returns to idle, the overlay goes with the hover
func (t *Tracker) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hovered = nil
	t.message = nil
	t.stopDescription()
}

// stopDescription must be called with the lock held
func (t *Tracker) stopDescription() {
	if t.description != nil {
		t.description.Stop()
		t.description = nil
	}
}

// Scroll interrupts any hover and restarts the quiet period
func (t *Tracker) Scroll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}

	t.hovered = nil
	t.message = nil
	t.scrolling = true
	t.stopDescription()

	if t.timer != nil {
		t.timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.quietPeriod, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		// a later scroll replaced this timer
		if t.timer == timer {
			t.scrolling = false
			t.timer = nil
		}
	})
	t.timer = timer
}

func (t *Tracker) Scrolling() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.scrolling
}

// OpenMessage shows the language breakdown of the hovered repository
// it returns false when the repository is not the one hovered
// selectable reports which languages of the breakdown exist in the language filter
func (t *Tracker) OpenMessage(repo model.Repository, selectable func(language string) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hovered == nil || t.hovered.ID != repo.ID {
		return false
	}

	if len(repo.Languages) == 0 {
		return false
	}

	shares := repo.LanguageShares()
	if selectable != nil {
		for i := range shares {
			shares[i].Selectable = selectable(shares[i].Name)
		}
	}

	t.message = &Message{
		RepoName:  repo.Name,
		Languages: shares,
	}

	return true
}

func (t *Tracker) CloseMessage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.message = nil
}

func (t *Tracker) Hovered() *model.Repository {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.hovered
}

func (t *Tracker) Message() *Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.message
}

// Popup returns the preview to render, false while scrolling or idle
func (t *Tracker) Popup() (model.Repository, Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.scrolling || t.hovered == nil {
		return model.Repository{}, Position{}, false
	}

	return *t.hovered, t.position, true
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := Snapshot{
		State:     Idle.String(),
		Scrolling: t.scrolling,
	}

	if t.hovered != nil {
		repo := *t.hovered
		position := t.position

		snapshot.State = Hovering.String()
		snapshot.Repo = &repo
		snapshot.Position = &position
		snapshot.Visible = !t.scrolling
		snapshot.Message = t.message

		if t.description != nil {
			snapshot.DescriptionOffset = t.description.Offset()
		}
	}

	return snapshot
}

// Close stops the debounce timer, the tracker ignores scrolls afterwards
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	t.stopDescription()
	t.closed = true
	t.scrolling = false
	t.hovered = nil
	t.message = nil
}
