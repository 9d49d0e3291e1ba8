// FILE: lixenwraith/cclog/sanitizer/sanitizer.go
// Package sanitizer neutralizes untrusted text before it is embedded in a log
// record. Rules pair a character filter with a transform and are applied by
// appending to a caller-owned buffer, so one Sanitizer can serve many
// goroutines without allocation.
package sanitizer

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // strconv.IsPrint is false, invalid UTF-8 included
	FilterControl                         // unicode.IsControl
	FilterQuote                           // '"' and '\\'
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // drop the character
	TransformHexEncode                     // "<XX>" per byte of the character
	TransformJSONEscape                    // backslash escapes, \u00XX for other controls
)

// Policy names a preset rule set
type Policy string

const (
	PolicyRaw  Policy = "raw"  // passthrough
	PolicyTxt  Policy = "txt"  // hex-encode anything unprintable
	PolicyJSON Policy = "json" // escape for embedding in a JSON string
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[Policy][]rule{
	PolicyRaw: nil,
	PolicyTxt: {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON: {
		{filter: FilterControl | FilterQuote, transform: TransformJSONEscape},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
}

// Sanitizer holds an ordered rule list. The first matching rule wins.
// A Sanitizer must not be modified while it is in use.
type Sanitizer struct {
	rules []rule
}

// New creates a passthrough sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// ForPolicy creates a sanitizer loaded with a preset
func ForPolicy(p Policy) *Sanitizer {
	return New().Policy(p)
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset. Unknown presets add nothing.
func (s *Sanitizer) Policy(p Policy) *Sanitizer {
	s.rules = append(s.rules, policyRules[p]...)
	return s
}

// Append writes the sanitized form of src to dst and returns the extended slice
func (s *Sanitizer) Append(dst []byte, src string) []byte {
	if len(s.rules) == 0 {
		return append(dst, src...)
	}

	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		invalid := r == utf8.RuneError && size == 1
		raw := src[i : i+size]
		i += size

		matched := false
		for _, rl := range s.rules {
			if matches(r, invalid, rl.filter) {
				dst = transform(dst, r, raw, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			dst = append(dst, raw...)
		}
	}
	return dst
}

// AppendBytes is Append for byte input
func (s *Sanitizer) AppendBytes(dst, src []byte) []byte {
	return s.Append(dst, string(src))
}

// Sanitize returns the sanitized string
func (s *Sanitizer) Sanitize(data string) string {
	return string(s.Append(make([]byte, 0, len(data)), data))
}

// ValidText reports whether b is well-formed UTF-8 text
func ValidText(b []byte) bool {
	return utf8.Valid(b)
}

func matches(r rune, invalid bool, mask uint64) bool {
	if mask&FilterNonPrintable != 0 && (invalid || !strconv.IsPrint(r)) {
		return true
	}
	if invalid {
		return false
	}
	if mask&FilterControl != 0 && unicode.IsControl(r) {
		return true
	}
	if mask&FilterQuote != 0 && (r == '"' || r == '\\') {
		return true
	}
	return false
}

const hexDigits = "0123456789abcdef"

func transform(dst []byte, r rune, raw string, mask uint64) []byte {
	switch {
	case mask&TransformStrip != 0:
		return dst

	case mask&TransformHexEncode != 0:
		dst = append(dst, '<')
		for j := 0; j < len(raw); j++ {
			dst = append(dst, hexDigits[raw[j]>>4], hexDigits[raw[j]&0x0f])
		}
		return append(dst, '>')

	case mask&TransformJSONEscape != 0:
		switch r {
		case '"', '\\':
			return append(dst, '\\', byte(r))
		case '\n':
			return append(dst, '\\', 'n')
		case '\r':
			return append(dst, '\\', 'r')
		case '\t':
			return append(dst, '\\', 't')
		case '\b':
			return append(dst, '\\', 'b')
		case '\f':
			return append(dst, '\\', 'f')
		}
		if r < 0x100 {
			return append(dst, '\\', 'u', '0', '0', hexDigits[r>>4], hexDigits[r&0x0f])
		}
		return append(dst, raw...)
	}
	return append(dst, raw...)
}
