package model

// Kind identifies the document family.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	return k == KindResume || k == KindCoverLetter
}

// Styling defaults applied by Normalize.
const (
	DefaultTemplate    = "classic"
	DefaultColorHex    = "#000000"
	DefaultBorderStyle = BorderSquircle
	DefaultFontFamily  = "inter"
)

// Border styles for photos and framed blocks.
const (
	BorderSquare   = "square"
	BorderCircle   = "circle"
	BorderSquircle = "squircle"
)

// BorderStyles lists every accepted border style.
var BorderStyles = []string{BorderSquare, BorderCircle, BorderSquircle}

// FontFamilies lists every accepted font family.
var FontFamilies = []string{"inter", "georgia", "roboto-mono"}

// Values is the capability set shared by every editable document type.
// Methods never mutate the receiver.
type Values[D any] interface {
	Kind() Kind
	Clone() D
	Normalize() D
	Validate() FieldErrors
	TemplateID() string
	PhotoHandle() string
	Styling() Styling
	DisplayTitle() string
}

// Styling is the set of customization choices on a document.
type Styling struct {
	ColorHex    string `json:"colorHex"`
	BorderStyle string `json:"borderStyle"`
	FontFamily  string `json:"fontFamily,omitempty"`
}
