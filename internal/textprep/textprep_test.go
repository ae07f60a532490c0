package textprep

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanContent(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	raw := append(bom, []byte("“quoted” text – with dash…")...)

	got, err := CleanContent(raw, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, `"quoted" text - with dash...`, got)
}

func TestCleanContentInvalidUTF8(t *testing.T) {
	raw := []byte{'h', 'i', 0xFF, 0xFE, '!'}

	got, err := CleanContent(raw, "broken.txt")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, "hi")
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("anything", "text/html; charset=utf-8"))
	assert.True(t, IsHTML("<!DOCTYPE html><html><body>x</body></html>", ""))
	assert.True(t, IsHTML("  <html lang=\"en\"><head></head></html>", "text/plain"))
	assert.False(t, IsHTML("just some prose with <b>markup</b>", "text/plain"))
}

func TestStripHTML(t *testing.T) {
	doc := `<!DOCTYPE html>
<html>
<head><title>Ignored</title><style>p { color: red }</style></head>
<body>
<script>alert("nope")</script>
<h1>Release notes</h1>
<p>The importer now handles <em>large</em> files.</p>
<p>Upgrade at your leisure.</p>
<footer><p>Legal boilerplate</p></footer>
</body>
</html>`

	got, err := StripHTML(doc)
	require.NoError(t, err)

	assert.Contains(t, got, "Release notes")
	assert.Contains(t, got, "The importer now handles large files.")
	assert.Contains(t, got, "Upgrade at your leisure.")
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "color: red")
	assert.NotContains(t, got, "Ignored")
	assert.NotContains(t, got, "Legal boilerplate")

	// Block elements keep the paragraphs on separate lines.
	lines := strings.Split(got, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
}

func TestCollapseWhitespace(t *testing.T) {
	in := "a  b\t\tc   \n\n\n\n  d  \n e"
	assert.Equal(t, "a b c\n\nd\ne", CollapseWhitespace(in))
}

func TestTruncateAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one closes it out."

	assert.Equal(t, text, TruncateAtSentence(text, 0), "zero budget disables truncation")
	assert.Equal(t, text, TruncateAtSentence(text, 1000), "short text passes through")

	got := TruncateAtSentence(text, 50)
	assert.Equal(t, "First sentence here. Second sentence follows.", got)

	got = TruncateAtSentence(text, 25)
	assert.Equal(t, "First sentence here.", got)
}

func TestTruncateAtSentenceHardCut(t *testing.T) {
	long := strings.Repeat("word ", 50)
	got := TruncateAtSentence(long, 20)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 20)
	assert.NotEmpty(t, got)
}

func TestPrepare(t *testing.T) {
	doc := `<html><body>
<script>tracking()</script>
<p>Kubernetes    upgrade notes.</p>
<p>Drain nodes before rebooting.</p>
</body></html>`

	got := Prepare(doc, "text/html", 0)
	assert.Equal(t, "Kubernetes upgrade notes.\nDrain nodes before rebooting.", got)
	assert.NotContains(t, got, "tracking")
}

func TestPrepareTruncates(t *testing.T) {
	body := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota."
	got := Prepare(body, "text/plain", 40)
	assert.Equal(t, "Alpha beta gamma. Delta epsilon zeta.", got)
}
