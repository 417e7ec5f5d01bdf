package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"date-deidentifier/internal/rewriter"
)

// Dark palette colors
var (
	ColorBackground      = color.NRGBA{R: 0x1E, G: 0x1E, B: 0x2E, A: 0xFF}
	ColorCardBackground  = color.NRGBA{R: 0x2A, G: 0x2A, B: 0x3E, A: 0xFF}
	ColorPrimaryAccent   = color.NRGBA{R: 0x89, G: 0xB4, B: 0xFA, A: 0xFF}
	ColorSuccess         = color.NRGBA{R: 0xA6, G: 0xE3, B: 0xA1, A: 0xFF}
	ColorWarning         = color.NRGBA{R: 0xF9, G: 0xE2, B: 0xAF, A: 0xFF}
	ColorError           = color.NRGBA{R: 0xF3, G: 0x8B, B: 0xA8, A: 0xFF}
	ColorTextPrimary     = color.NRGBA{R: 0xCD, G: 0xD6, B: 0xF4, A: 0xFF}
	ColorTextSecondary   = color.NRGBA{R: 0xA6, G: 0xAD, B: 0xC8, A: 0xFF}
	ColorDisabled        = color.NRGBA{R: 0x58, G: 0x5B, B: 0x70, A: 0xFF}
	ColorInputBackground = color.NRGBA{R: 0x31, G: 0x32, B: 0x44, A: 0xFF}
	ColorBorder          = color.NRGBA{R: 0x45, G: 0x47, B: 0x5A, A: 0xFF}
	ColorDateOriginal    = color.NRGBA{R: 0xFA, G: 0xB3, B: 0x87, A: 0xFF} // a date as written in the source
	ColorDateRelative    = color.NRGBA{R: 0x94, G: 0xE2, B: 0xD5, A: 0xFF} // the phrase that replaces it
)

// Theme color names for date highlighting in rich text.
const (
	colorNameDateOriginal fyne.ThemeColorName = "dateOriginal"
	colorNameDateRelative fyne.ThemeColorName = "dateRelative"
)

var palette = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:        ColorBackground,
	theme.ColorNameButton:            ColorPrimaryAccent,
	theme.ColorNameDisabledButton:    ColorDisabled,
	theme.ColorNameDisabled:          ColorDisabled,
	theme.ColorNameError:             ColorError,
	theme.ColorNameFocus:             ColorPrimaryAccent,
	theme.ColorNameForeground:        ColorTextPrimary,
	theme.ColorNameHeaderBackground:  ColorCardBackground,
	theme.ColorNameHover:             ColorDateRelative,
	theme.ColorNameInputBackground:   ColorInputBackground,
	theme.ColorNameInputBorder:       ColorBorder,
	theme.ColorNameMenuBackground:    ColorCardBackground,
	theme.ColorNameOverlayBackground: ColorCardBackground,
	theme.ColorNamePlaceHolder:       ColorTextSecondary,
	theme.ColorNamePressed:           ColorDateOriginal,
	theme.ColorNamePrimary:           ColorPrimaryAccent,
	theme.ColorNameScrollBar:         ColorBorder,
	theme.ColorNameSelection:         color.NRGBA{R: 0xFA, G: 0xB3, B: 0x87, A: 0x55},
	theme.ColorNameSeparator:         ColorBorder,
	theme.ColorNameSuccess:           ColorSuccess,
	theme.ColorNameWarning:           ColorWarning,
	colorNameDateOriginal:            ColorDateOriginal,
	colorNameDateRelative:            ColorDateRelative,
}

// Notes are read in the previews, so text runs larger than fyne's defaults.
var sizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:      8,
	theme.SizeNameInnerPadding: 12,
	theme.SizeNameText:         15,
	theme.SizeNameHeadingText:  20,
	theme.SizeNameCaptionText:  12,
}

// darkTheme serves the palette above and falls back to fyne's dark variant.
type darkTheme struct{}

var _ fyne.Theme = (*darkTheme)(nil)

func (darkTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

func (darkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (darkTheme) Size(name fyne.ThemeSizeName) float32 {
	if s, ok := sizes[name]; ok {
		return s
	}
	return theme.DefaultTheme().Size(name)
}

// highlightDates splits text into rich text segments with every replaced span
// colored. With rewritten set the spans show their relative phrase, otherwise
// the date as written. Replacements must be sorted and refer to text.
func highlightDates(text string, replacements []rewriter.Replacement, rewritten bool) []widget.RichTextSegment {
	var segs []widget.RichTextSegment
	plain := func(s string) {
		if s != "" {
			segs = append(segs, &widget.TextSegment{Text: s, Style: widget.RichTextStyleInline})
		}
	}

	pos := 0
	for _, r := range replacements {
		plain(text[pos:r.Start])
		style := widget.RichTextStyleInline
		style.TextStyle = fyne.TextStyle{Bold: true}
		if rewritten {
			style.ColorName = colorNameDateRelative
			segs = append(segs, &widget.TextSegment{Text: r.Phrase, Style: style})
		} else {
			style.ColorName = colorNameDateOriginal
			segs = append(segs, &widget.TextSegment{Text: r.Original, Style: style})
		}
		pos = r.End
	}
	plain(text[pos:])
	return segs
}
