package markers

import (
	"encoding/base64"
	"fmt"
)

// Glyph renders the SVG pin for t. The output depends only on the tier's
// color and size, so equal tiers always produce byte-identical markup.
func Glyph(t Tier) string {
	h := t.Size.Pixels()
	w := h * 3 / 4
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 24 32">`+
		`<path d="M12 0C5.4 0 0 5.4 0 12c0 9 12 20 12 20s12-11 12-20C24 5.4 18.6 0 12 0z" fill="%s" stroke="#ffffff" stroke-width="1.5"/>`+
		`<circle cx="12" cy="12" r="4.5" fill="#ffffff"/></svg>`, w, h, t.Color)
}

// GlyphDataURI is Glyph encoded for use as a map marker icon URL
func GlyphDataURI(t Tier) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(Glyph(t)))
}
