package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const post = `
<h2>Brewing at home</h2>
<p>  </p>
<p>Good coffee starts with <strong>fresh</strong> beans.</p>
<script>var tracking = "ignore me";</script>
<figure><img src="https://acme.test/beans.jpg" alt="Beans"><figcaption>Beans</figcaption></figure>
<p>Grind right before brewing.</p>
<img src="https://acme.test/beans.jpg">
<img src="https://acme.test/grinder.jpg">
<!-- comment -->
`

func TestDocument(t *testing.T) {
	doc, err := Parse(post)
	require.NoError(t, err)

	assert.Equal(t, "Brewing at home Good coffee starts with fresh beans. Beans Grind right before brewing.", doc.Text())
	assert.Equal(t, "Good coffee starts with fresh beans.", doc.FirstParagraph())
	assert.Equal(t, []string{"https://acme.test/beans.jpg", "https://acme.test/grinder.jpg"}, doc.Images())
	assert.Equal(t, 14, doc.WordCount())
}

func TestEmptyDocument(t *testing.T) {
	doc, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text())
	assert.Equal(t, "", doc.FirstParagraph())
	assert.Nil(t, doc.Images())
	assert.Equal(t, 0, doc.WordCount())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "one two…", Summary("<p>one two three</p>", 2))
	assert.Equal(t, "one two three", Summary("<p>one two three</p>", 5))
	assert.Equal(t, "one two three", Summary("<p>one two three</p>", 0))
}

func TestTextUnescapesEntities(t *testing.T) {
	assert.Equal(t, "Fish & Chips", Text("<p>Fish &amp; Chips</p>"))
}
