package schemas

// -- Browser Override Schemas --

// UserAgentBrandVersion is a local replacement for emulation.UserAgentBrandVersion.
type UserAgentBrandVersion struct {
	Brand   string `json:"brand"`
	Version string `json:"version"`
}

// ClientHints defines the User-Agent Client Hints data.
type ClientHints struct {
	Platform        string                  `json:"platform"`
	PlatformVersion string                  `json:"platformVersion"`
	Architecture    string                  `json:"architecture"`
	Bitness         string                  `json:"bitness"`
	Mobile          bool                    `json:"mobile"`
	FullVersion     string                  `json:"fullVersion"`
	Brands          []UserAgentBrandVersion `json:"brands"`
}

// OverridePatchSet is everything a session must apply before the first
// navigation so that every page observes the same identity.
type OverridePatchSet struct {
	UserAgent           string            `json:"userAgent"`
	AcceptLanguage      string            `json:"acceptLanguage"`
	NavigatorPlatform   string            `json:"navigatorPlatform"`
	ClientHints         ClientHints       `json:"clientHints"`
	Timezone            string            `json:"timezoneId"`
	TimezoneOffset      int               `json:"timezoneOffset"`
	Locale              string            `json:"locale"`
	Languages           []string          `json:"languages"`
	Screen              Screen            `json:"screen"`
	DevicePixelRatio    float64           `json:"devicePixelRatio"`
	HardwareConcurrency int               `json:"hardwareConcurrency"`
	DeviceMemory        float64           `json:"deviceMemory"`
	MaxTouchPoints      int               `json:"maxTouchPoints"`
	GPU                 GPU               `json:"gpu"`
	WebGL               WebGLCapabilities `json:"webgl"`
	Fonts               []string          `json:"fonts"`
	CanvasNoiseSeed     uint32            `json:"canvasNoiseSeed"`
	AudioNoiseSeed      uint32            `json:"audioNoiseSeed"`
	Audio               AudioProperties   `json:"audio"`
	Battery             Battery           `json:"battery"`
	// Script is registered to run in every new document before page scripts.
	Script string `json:"-"`
}

// -- Page Geometry Schemas --

// ElementBounds is the viewport-relative bounding box of a DOM element.
type ElementBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the box.
func (b ElementBounds) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains reports whether the point lies inside the box, edges included.
func (b ElementBounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// PageMetrics describes the viewport and the scrollable document.
type PageMetrics struct {
	ViewportWidth         float64 `json:"viewportWidth"`
	ViewportHeight        float64 `json:"viewportHeight"`
	PageHeight            float64 `json:"pageHeight"`
	ScrollY               float64 `json:"scrollY"`
	EstimatedWordsVisible int     `json:"estimatedWordsVisible"`
}

// -- Low-Level Input Schemas --

// MouseEventType defines the type of a mouse event.
type MouseEventType string

const (
	MouseMove    MouseEventType = "mouseMoved"
	MousePress   MouseEventType = "mousePressed"
	MouseRelease MouseEventType = "mouseReleased"
	MouseWheel   MouseEventType = "mouseWheel"
)

// MouseButton defines the mouse button being pressed.
type MouseButton string

const (
	ButtonNone   MouseButton = "none"
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// MouseEventData encapsulates all data for a mouse event.
type MouseEventData struct {
	Type       MouseEventType `json:"type"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Button     MouseButton    `json:"button"`
	Buttons    int64          `json:"buttons"`
	ClickCount int            `json:"clickCount"`
	DeltaX     float64        `json:"deltaX"`
	DeltaY     float64        `json:"deltaY"`
}
