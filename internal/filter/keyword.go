package filter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/logging"
)

// KeywordPatternFilter accepts content that contains Keyword and matches Pattern.
// The substring check runs first so most files never reach the regexp engine.
type KeywordPatternFilter struct {
	Keyword string
	Pattern *regexp.Regexp

	keyword []byte
	implied bool
}

// NewKeywordPatternFilter compiles pattern and checks that every match of it must also
// contain keyword. When it need not, the keyword guard could hide real matches: this is
// logged as a warning, or returned as a config error when strict is set.
func NewKeywordPatternFilter(keyword, pattern string, strict bool, logger *logging.Logger) (*KeywordPatternFilter, error) {
	if keyword == "" && pattern == "" {
		return nil, declerrors.NewConfigError("filter.keyword", "", errors.New("keyword or pattern is required"))
	}

	f := &KeywordPatternFilter{Keyword: keyword, keyword: []byte(keyword), implied: true}
	if pattern == "" {
		return f, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, declerrors.NewConfigError("filter.pattern", pattern, err)
	}
	f.Pattern = re

	if keyword == "" {
		return f, nil
	}
	literals, err := RequiredLiterals(pattern)
	if err != nil {
		return nil, declerrors.NewConfigError("filter.pattern", pattern, err)
	}
	f.implied = false
	for _, lit := range literals {
		if strings.Contains(lit, keyword) {
			f.implied = true
			break
		}
	}
	if !f.implied {
		if strict {
			return nil, declerrors.NewConfigError("filter.keyword", keyword,
				fmt.Errorf("pattern %q can match text that does not contain the keyword", pattern))
		}
		logging.OrDefault(logger).Warning(fmt.Sprintf(
			"keyword %q is not required by pattern %q; files matching only the pattern will be skipped", keyword, pattern))
	}
	return f, nil
}

func (f *KeywordPatternFilter) Name() string { return "keyword-pattern" }

// KeywordImplied reports whether every pattern match necessarily contains the keyword
func (f *KeywordPatternFilter) KeywordImplied() bool {
	return f.implied
}

// AcceptContent implements ContentFilter
func (f *KeywordPatternFilter) AcceptContent(_ string, content []byte) bool {
	if len(f.keyword) > 0 && !bytes.Contains(content, f.keyword) {
		return false
	}
	if f.Pattern == nil {
		return true
	}
	return f.Pattern.Match(content)
}

// RequiredLiterals returns case-sensitive literal strings that appear in every match of
// pattern. The result is conservative: an empty slice means nothing is guaranteed.
func RequiredLiterals(pattern string) ([]string, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	return requiredLiterals(re.Simplify()), nil
}

func requiredLiterals(re *syntax.Regexp) []string {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return nil
		}
		return []string{string(re.Rune)}
	case syntax.OpCapture, syntax.OpPlus:
		return requiredLiterals(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min < 1 {
			return nil
		}
		return requiredLiterals(re.Sub[0])
	case syntax.OpConcat:
		var out []string
		var run strings.Builder
		flush := func() {
			if run.Len() > 0 {
				out = append(out, run.String())
				run.Reset()
			}
		}
		for _, sub := range re.Sub {
			if lit, ok := exactLiteral(sub); ok {
				run.WriteString(lit)
				continue
			}
			flush()
			out = append(out, requiredLiterals(sub)...)
		}
		flush()
		return out
	}
	return nil
}

// exactLiteral returns the text re matches when it can match nothing else, looking
// through groups so a literal split by a capture still joins its neighbours
func exactLiteral(re *syntax.Regexp) (string, bool) {
	switch re.Op {
	case syntax.OpEmptyMatch:
		return "", true
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return "", false
		}
		return string(re.Rune), true
	case syntax.OpCapture:
		return exactLiteral(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min != re.Max || re.Min < 1 {
			return "", false
		}
		lit, ok := exactLiteral(re.Sub[0])
		return strings.Repeat(lit, re.Min), ok
	case syntax.OpConcat:
		var b strings.Builder
		for _, sub := range re.Sub {
			lit, ok := exactLiteral(sub)
			if !ok {
				return "", false
			}
			b.WriteString(lit)
		}
		return b.String(), true
	}
	return "", false
}
