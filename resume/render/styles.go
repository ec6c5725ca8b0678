package render

import (
	"html/template"
	"regexp"
	"strings"

	"resume-builder/resume/model"
)

// Style holds the CSS fragments every template derives from the document's
// styling choices. All accent color comes from ColorHex.
type Style struct {
	Color       template.CSS
	PhotoRadius template.CSS
	BoxRadius   template.CSS
	Font        template.CSS
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var photoRadius = map[string]string{
	model.BorderSquare:   "0",
	model.BorderCircle:   "50%",
	model.BorderSquircle: "18%",
}

var boxRadius = map[string]string{
	model.BorderSquare:   "0",
	model.BorderCircle:   "16px",
	model.BorderSquircle: "8px",
}

var fontStacks = map[string]string{
	"inter":       `font-family:Inter, "Helvetica Neue", Arial, sans-serif`,
	"georgia":     `font-family:Georgia, "Times New Roman", serif`,
	"roboto-mono": `font-family:"Roboto Mono", Menlo, monospace`,
}

// styleFor maps styling choices to CSS. Unknown values fall back to defaults.
func styleFor(colorHex, border, font string) Style {
	color := strings.TrimSpace(colorHex)
	if !hexColor.MatchString(color) {
		color = model.DefaultColorHex
	}
	if _, ok := photoRadius[border]; !ok {
		border = model.DefaultBorderStyle
	}
	stack, ok := fontStacks[font]
	if !ok {
		stack = fontStacks[model.DefaultFontFamily]
	}
	return Style{
		Color:       template.CSS(color),
		PhotoRadius: template.CSS(photoRadius[border]),
		BoxRadius:   template.CSS(boxRadius[border]),
		Font:        template.CSS(stack),
	}
}
