// Package popup positions the hover preview of a repository card and
// tracks the hover, overlay and scroll state of the card grid.
package popup

const (
	// Scale is the zoom applied to the hovered card preview
	Scale = 1.2

	// LeftOffset shifts the preview left of the hovered card
	LeftOffset = 16.0

	// TopMargin is the minimum gap between the container top and the preview
	TopMargin = 10.0

	// BottomMargin is the minimum gap between the preview and the container bottom
	BottomMargin = 20.0
)

// Rect is a bounding box in viewport coordinates
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

type Position struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// PopupHeight is the rendered height of the preview, scaled
func (p Position) PopupHeight() float64 {
	return p.Height * p.Scale
}

// ComputePosition places the preview over the hovered card, clamped inside the scroll container
// a preview taller than the container still overflows above it
func ComputePosition(target Rect, container Rect) Position {
	popupHeight := target.Height * Scale
	top := target.Top

	if minTop := container.Top + TopMargin; top < minTop {
		top = minTop
	}

	if maxBottom := container.Bottom() - BottomMargin; top+popupHeight > maxBottom {
		top = maxBottom - popupHeight
	}

	return Position{
		Top:    top,
		Left:   target.Left - LeftOffset,
		Width:  target.Width,
		Height: target.Height,
		Scale:  Scale,
	}
}
