// Package matcher 判断搜索词是否出现在文本中，并生成高亮摘录
package matcher

import (
	"regexp"
	"strings"

	"github.com/fyerfyer/pdf-search/internal/models"
	"github.com/fyerfyer/pdf-search/internal/normalize"
)

// Policy 匹配策略
type Policy string

const (
	// Substring 紧凑形式的子串匹配
	Substring Policy = "substring"
	// WordBoundary 以词边界界定的匹配，不会命中更长字母数字串的内部
	WordBoundary Policy = "word_boundary"
)

// Matcher 匹配器接口
// 输入为原始文本，规范化由匹配器完成
type Matcher interface {
	// Policy 返回匹配策略
	Policy() Policy
	// Compile 预处理搜索词，返回可重复使用的查询
	Compile(term string) Query
}

// Query 编译后的搜索词
type Query interface {
	// Match 判断搜索词是否出现在文本中
	Match(text string) bool
	// Empty 搜索词规范化后是否为空
	Empty() bool
}

// New 根据策略名创建匹配器
func New(policy string) (Matcher, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(policy))) {
	case Substring, "":
		return substringMatcher{}, nil
	case WordBoundary:
		return wordBoundaryMatcher{}, nil
	default:
		return nil, &models.InputError{Field: "match_policy", Reason: "unsupported policy " + policy}
	}
}

// Match 便捷函数，单次匹配
func Match(m Matcher, text, term string) bool {
	return m.Compile(term).Match(text)
}

type substringMatcher struct{}

func (substringMatcher) Policy() Policy { return Substring }

func (substringMatcher) Compile(term string) Query {
	return substringQuery(normalize.Compact(term))
}

type substringQuery string

func (q substringQuery) Empty() bool { return q == "" }

func (q substringQuery) Match(text string) bool {
	if q == "" {
		return false
	}
	return strings.Contains(normalize.Compact(text), string(q))
}

type wordBoundaryMatcher struct{}

func (wordBoundaryMatcher) Policy() Policy { return WordBoundary }

// Compile 将搜索词拆成字母数字片段，片段之间允许任意非字母数字分隔
// 例如 "12345-B" 编译为 \b12345[^a-z0-9]*b\b
func (wordBoundaryMatcher) Compile(term string) Query {
	tokens := normalize.Tokens(term)
	if len(tokens) == 0 {
		return wordBoundaryQuery{}
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	pattern := `\b` + strings.Join(quoted, `[^a-z0-9]*`) + `\b`
	return wordBoundaryQuery{re: regexp.MustCompile(pattern)}
}

type wordBoundaryQuery struct {
	re *regexp.Regexp
}

func (q wordBoundaryQuery) Empty() bool { return q.re == nil }

func (q wordBoundaryQuery) Match(text string) bool {
	if q.re == nil {
		return false
	}
	return q.re.MatchString(normalize.Normalize(text))
}
