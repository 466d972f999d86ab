package schemas

// -- Fingerprint Schemas --

// Platform is the operating-system family a fingerprint presents.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
)

// Platforms lists every supported platform in a stable order.
var Platforms = []Platform{PlatformWindows, PlatformMac, PlatformLinux}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformWindows, PlatformMac, PlatformLinux:
		return true
	}
	return false
}

func (p Platform) String() string { return string(p) }

// Screen is the reported display geometry.
type Screen struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	AvailWidth  int         `json:"availWidth"`
	AvailHeight int         `json:"availHeight"`
	ColorDepth  int         `json:"colorDepth"`
	Orientation Orientation `json:"orientation"`
}

// Orientation is what screen.orientation reports.
type Orientation struct {
	Type  string `json:"type"`
	Angle int    `json:"angle"`
}

const (
	OrientationLandscape = "landscape-primary"
	OrientationPortrait  = "portrait-primary"
)

// AspectRatio returns width/height, or 0 for a degenerate screen.
func (s Screen) AspectRatio() float64 {
	if s.Height <= 0 {
		return 0
	}
	return float64(s.Width) / float64(s.Height)
}

// GPU is the unmasked WebGL vendor and renderer pair.
type GPU struct {
	Vendor   string `json:"vendor"`
	Renderer string `json:"renderer"`
}

// WebGLCapabilities are the implementation limits and extensions a WebGL
// context reports. They follow from the GPU family, never from chance.
type WebGLCapabilities struct {
	MaxTextureSize               int        `json:"maxTextureSize"`
	MaxRenderbufferSize          int        `json:"maxRenderbufferSize"`
	MaxViewportDims              [2]int     `json:"maxViewportDims"`
	MaxVertexAttribs             int        `json:"maxVertexAttribs"`
	MaxVertexUniformVectors      int        `json:"maxVertexUniformVectors"`
	MaxFragmentUniformVectors    int        `json:"maxFragmentUniformVectors"`
	MaxVaryingVectors            int        `json:"maxVaryingVectors"`
	MaxCombinedTextureImageUnits int        `json:"maxCombinedTextureImageUnits"`
	AliasedLineWidthRange        [2]float64 `json:"aliasedLineWidthRange"`
	AliasedPointSizeRange        [2]float64 `json:"aliasedPointSizeRange"`
	Extensions                   []string   `json:"extensions"`
}

// AudioProperties describe the default output device an AudioContext opens.
// Latencies are in seconds.
type AudioProperties struct {
	SampleRate    int     `json:"sampleRate"`
	ChannelCount  int     `json:"channelCount"`
	BaseLatency   float64 `json:"baseLatency"`
	OutputLatency float64 `json:"outputLatency"`
}

// Battery is the state reported by navigator.getBattery.
type Battery struct {
	Charging bool    `json:"charging"`
	Level    float64 `json:"level"`
}

// Fingerprint is a complete, self-consistent browser identity.
// TimezoneOffset uses the Date.getTimezoneOffset convention: minutes to add
// to local standard time to reach UTC, so UTC+1 is -60.
type Fingerprint struct {
	Seed                string            `json:"seed"`
	Country             string            `json:"country"`
	Platform            Platform          `json:"platform"`
	UserAgent           string            `json:"userAgent"`
	ChromeVersion       string            `json:"chromeVersion"`
	NavigatorPlatform   string            `json:"navigatorPlatform"`
	ClientHints         ClientHints       `json:"clientHints"`
	Timezone            string            `json:"timezone"`
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
}
