package matcher

import (
	"testing"

	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New("substring")
	require.NoError(t, err)
	assert.Equal(t, Substring, m.Policy())

	m, err = New("")
	require.NoError(t, err)
	assert.Equal(t, Substring, m.Policy())

	m, err = New("WORD_BOUNDARY")
	require.NoError(t, err)
	assert.Equal(t, WordBoundary, m.Policy())

	_, err = New("fuzzy")
	require.Error(t, err)
	assert.True(t, models.IsInputError(err))
}

func TestSubstringPolicy(t *testing.T) {
	m, _ := New("substring")

	assert.True(t, Match(m, "Nota Fiscal nº 12345-B", "12345b"))
	assert.True(t, Match(m, "Nota Fiscal nº 12345-B", "nota fiscal"))
	assert.True(t, Match(m, "NOTA\nFIS CAL", "notafiscal"))
	assert.True(t, Match(m, "ação judicial", "ACAO"))
	// 子串策略会命中更长数字串的内部
	assert.True(t, Match(m, "A123456B", "123"))
	assert.False(t, Match(m, "Nota Fiscal", "12345"))
}

func TestWordBoundaryPolicy(t *testing.T) {
	m, _ := New("word_boundary")

	assert.False(t, Match(m, "...A123456B...", "123"))
	assert.True(t, Match(m, "...PAGE 123 OF 9...", "123"))
	assert.True(t, Match(m, "Nota Fiscal nº 12345-B", "12345-b"))
	assert.True(t, Match(m, "Nota Fiscal nº 12345 B", "12345"))
	assert.True(t, Match(m, "Nota  Fiscal", "nota fiscal"))
	assert.True(t, Match(m, "Ação Fiscal", "acao"))
	assert.False(t, Match(m, "notafiscal", "nota"))
}

func TestEmptyTermNeverMatches(t *testing.T) {
	for _, policy := range []string{"substring", "word_boundary"} {
		m, _ := New(policy)
		q := m.Compile("--- ***")
		assert.True(t, q.Empty(), policy)
		assert.False(t, q.Match("anything at all"), policy)
	}
}

func TestHighlight(t *testing.T) {
	assert.Equal(t, "Invoice >>>12345<<< total", Highlight("Invoice 12345 total", "12345", 0))
	assert.Equal(t, "invoice >>>ABC<<< total", Highlight("invoice ABC total", "abc", 500))
	assert.Equal(t, ">>>ab<<< x >>>AB<<<", Highlight("ab x AB", "Ab", 0))
	// 正则元字符按字面处理
	assert.Equal(t, "price >>>1.5$<<< or 105$", Highlight("price 1.5$ or 105$", "1.5$", 0))
	// 只处理前缀
	assert.Equal(t, "abc", Highlight("abcdef term", "term", 3))
	assert.Equal(t, "abc", Highlight("abc", "", 0))
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "ação", Prefix("ação fiscal", 4))
	assert.Equal(t, "ab", Prefix("ab", 10))
	assert.Equal(t, "ab", Prefix("ab", 0))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "line1\nline2\nline3", CleanText("line1\r\nline2\rline3"))
	assert.Equal(t, "Capa\nNota", CleanText("Capa\fNota"))
	assert.Equal(t, "a\tb", CleanText("a\tb\x00\x1b"))
	assert.Equal(t, "Nota 12345", CleanText("Nota 12345"))

	// 跨页的摘录不再包含换页符
	assert.Equal(t, "Capa\nNota >>>12345<<<", Highlight("Capa\fNota 12345", "12345", 0))
	assert.Equal(t, "a\nb >>>x<<<", Highlight("a\r\nb x", "x", 0))
}
