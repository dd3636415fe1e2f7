package printer

import (
	"bytes"
	"strings"
)

// ESC/POS commands
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
)

// ESCPOSEncoder frames plain-text print jobs with the minimal ESC/POS
// commands every receipt printer understands. The full command set is out
// of scope; this is init, text, feed, cut.
type ESCPOSEncoder struct {
	buffer *bytes.Buffer
}

// NewESCPOSEncoder creates a new ESC/POS encoder
func NewESCPOSEncoder() *ESCPOSEncoder {
	return &ESCPOSEncoder{
		buffer: new(bytes.Buffer),
	}
}

// Initialize sends the reset command
func (e *ESCPOSEncoder) Initialize() {
	e.buffer.WriteByte(ESC)
	e.buffer.WriteByte('@')
}

// WriteText writes text, normalizing line endings to LF
func (e *ESCPOSEncoder) WriteText(text string) {
	e.buffer.WriteString(strings.ReplaceAll(text, "\r\n", "\n"))
}

// LineFeed sends a single line feed
func (e *ESCPOSEncoder) LineFeed() {
	e.buffer.WriteByte(0x0A)
}

// Feed sends multiple line feeds
func (e *ESCPOSEncoder) Feed(lines int) {
	for i := 0; i < lines; i++ {
		e.LineFeed()
	}
}

// SetAlignment sets text alignment
func (e *ESCPOSEncoder) SetAlignment(align string) {
	e.buffer.WriteByte(ESC)
	e.buffer.WriteByte('a')

	switch align {
	case "center":
		e.buffer.WriteByte(1)
	case "right":
		e.buffer.WriteByte(2)
	default:
		e.buffer.WriteByte(0)
	}
}

// SetBold enables or disables bold text
func (e *ESCPOSEncoder) SetBold(enabled bool) {
	e.buffer.WriteByte(ESC)
	e.buffer.WriteByte('E')
	if enabled {
		e.buffer.WriteByte(1)
	} else {
		e.buffer.WriteByte(0)
	}
}

// Cut sends the full paper cut command
func (e *ESCPOSEncoder) Cut() {
	e.buffer.WriteByte(GS)
	e.buffer.WriteByte('V')
	e.buffer.WriteByte(0)
}

// GetBytes returns the generated ESC/POS commands
func (e *ESCPOSEncoder) GetBytes() []byte {
	return e.buffer.Bytes()
}

// Reset clears the buffer
func (e *ESCPOSEncoder) Reset() {
	e.buffer.Reset()
}

// EncodeTextJob frames receipt text as one complete print job.
func EncodeTextJob(content string) []byte {
	encoder := NewESCPOSEncoder()
	encoder.Initialize()
	encoder.WriteText(content)
	encoder.Feed(3)
	encoder.Cut()
	return encoder.GetBytes()
}
