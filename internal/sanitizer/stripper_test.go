package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	hs := NewHTMLStripper()

	assert.Equal(t, "Will BTC close above 100k?", hs.StripHTML("Will BTC close above 100k?"))
	assert.Equal(t, "alert(1)", hs.StripHTML("<script>alert(1)</script>"))
	assert.Equal(t, "bold", hs.StripHTML("<b>bold</b>"))
	assert.Equal(t, "", hs.StripHTML("<img src=x onerror=alert(1)>"))
}
