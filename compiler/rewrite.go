package compiler

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	baseCallPattern   = regexp.MustCompile(`base\s*\((\s*\))?`)
	baseMethodPattern = regexp.MustCompile(`base\s*\.\s*(` + wordClass + `+)\s*\((\s*\))?`)
	privatePattern    = regexp.MustCompile(`this.private\s*\.`)
)

// privateAccess replaces this.private.X inside method bodies.
const privateAccess = "privObj[this.privKey]."

// RewriteBody expands the method body shorthands:
//
//	base(a, b)     ->  B.call(this, a, b)
//	base.M(a, b)   ->  B.prototype.M.call(this, a, b)
//	this.private.X ->  privObj[this.privKey].X
//
// The base forms are left untouched when baseClass is empty. The rewrite
// is textual and also applies inside string literals and comments.
func RewriteBody(body, baseClass string) string {
	if baseClass != "" {
		body = replaceWord(body, baseCallPattern, func(m []string) string {
			if m[1] != "" {
				return baseClass + ".call(this)"
			}
			return baseClass + ".call(this, "
		})
		body = replaceWord(body, baseMethodPattern, func(m []string) string {
			if m[2] != "" {
				return baseClass + ".prototype." + m[1] + ".call(this)"
			}
			return baseClass + ".prototype." + m[1] + ".call(this, "
		})
	}
	return replaceWord(body, privatePattern, func([]string) string {
		return privateAccess
	})
}

// replaceWord replaces matches of re that do not directly follow a word
// character. repl receives the match and its submatches.
func replaceWord(s string, re *regexp.Regexp, repl func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if followsWord(s, start) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(s[last:start])
		b.WriteString(repl(groups))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func followsWord(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Pc, r)
}
