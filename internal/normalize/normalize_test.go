package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ação Fiscal", "acao fiscal"},
		{"Nota Fiscal nº 12345-B", "nota fiscal no 12345-b"},
		{"ÉLODIE", "elodie"},
		{"ﬁnal", "final"}, // 连字在兼容分解中展开
		{"日本 abc", " abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestStripToAlnum(t *testing.T) {
	assert.Equal(t, "abc123", StripToAlnum("A-b C_1 2.3!"))
	assert.Equal(t, "", StripToAlnum("--- ..."))
	// 非ASCII字符在第二阶段同样被丢弃
	assert.Equal(t, "ao", StripToAlnum("ação"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "notafiscalno12345b", Compact("Nota Fiscal nº 12345-B"))
	assert.Equal(t, "12345b", Compact("12345b"))
}

func TestCompactOnlyLowercaseAlnum(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]*$`)
	inputs := []string{
		"Über straße №5 — ½ ∑ 𝔘𝔫𝔦𝔠𝔬𝔡𝔢",
		"\x00\xff\xfe invalid utf8",
		"TAB\tNEWLINE\nCR\r",
		"Ｆｕｌｌｗｉｄｔｈ１２３",
		"ç é ü ñ ø å",
	}
	for _, in := range inputs {
		assert.Regexp(t, valid, Compact(in), "Compact(%q)", in)
	}
	assert.Equal(t, "fullwidth123", Compact("Ｆｕｌｌｗｉｄｔｈ１２３"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"12345", "b"}, Tokens("12345-B"))
	assert.Equal(t, []string{"nota", "fiscal"}, Tokens("  Nota   Fiscal "))
	assert.Empty(t, Tokens("***"))
}
