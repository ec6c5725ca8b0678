// Package layout computes how a fixed-size A4 page is scaled into a
// container of arbitrary width.
package layout

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
)

// ReferenceWidth and ReferenceHeight are an A4 page in CSS pixels at 96 DPI.
const (
	ReferenceWidth  = 794
	ReferenceHeight = 1123
)

// ScaleFor returns the factor that fits the reference page into width.
// A width that is zero, negative or not a number is not ready.
func ScaleFor(width float64) (scale float64, ready bool) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return 0, false
	}
	return width / ReferenceWidth, true
}

// Frame is the scaled viewport one render is laid out in.
type Frame struct {
	Width float64 `json:"width"`
	Scale float64 `json:"scale"`
	Ready bool    `json:"ready"`
}

// NewFrame builds the frame for a measured container width.
func NewFrame(width float64) Frame {
	scale, ready := ScaleFor(width)
	if !ready {
		return Frame{}
	}
	return Frame{Width: width, Scale: scale, Ready: true}
}

// PrintFrame renders at reference size, as used for export.
func PrintFrame() Frame {
	return NewFrame(ReferenceWidth)
}

// ContainerStyle sizes the outer box so the scaled page does not overflow it.
func (f Frame) ContainerStyle() template.CSS {
	if !f.Ready {
		return "position:relative;width:100%;overflow:hidden"
	}
	return template.CSS(fmt.Sprintf(
		"position:relative;width:%spx;height:%spx;overflow:hidden",
		px(f.Width), px(ReferenceHeight*f.Scale),
	))
}

// PageStyle lays the page out at reference width and scales it uniformly.
// The page stays hidden until a real width is known.
func (f Frame) PageStyle() template.CSS {
	base := fmt.Sprintf("width:%dpx;min-height:%dpx;transform-origin:top left", ReferenceWidth, ReferenceHeight)
	if !f.Ready {
		return template.CSS(base + ";visibility:hidden")
	}
	return template.CSS(fmt.Sprintf("%s;transform:scale(%s)", base, strconv.FormatFloat(f.Scale, 'f', -1, 64)))
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
