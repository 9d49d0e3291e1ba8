// FILE: lixenwraith/cclog/sanitizer/sanitizer_test.go
package sanitizer

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		input  string
		want   string
	}{
		{"raw passthrough", PolicyRaw, "a\x00b\n", "a\x00b\n"},
		{"txt printable untouched", PolicyTxt, "hello wörld", "hello wörld"},
		{"txt newline", PolicyTxt, "line1\nline2", "line1<0a>line2"},
		{"txt escape sequence", PolicyTxt, "\x1b[31mred", "<1b>[31mred"},
		{"txt invalid utf8", PolicyTxt, "ok\xffok", "ok<ff>ok"},
		{"txt multibyte control", PolicyTxt, "a\u0085b", "a<c285>b"},
		{"json quotes", PolicyJSON, `say "hi" \o/`, `say \"hi\" \\o/`},
		{"json controls", PolicyJSON, "a\tb\nc\x01", `a\tb\nc\u0001`},
		{"json del", PolicyJSON, "x\x7f", `x\u007f`},
		{"json invalid utf8", PolicyJSON, "\xfe", "<fe>"},
		{"unknown policy", Policy("nope"), "a\nb", "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForPolicy(tt.policy).Sanitize(tt.input))
		})
	}
}

func TestJSONPolicyProducesValidJSON(t *testing.T) {
	s := ForPolicy(PolicyJSON)
	inputs := []string{"plain", "quote\"back\\slash", "ctl\x00\x1f\x7f", "bad\xc3", "tab\there"}

	for _, in := range inputs {
		buf := append([]byte{'"'}, s.Append(nil, in)...)
		buf = append(buf, '"')
		var out string
		require.NoError(t, json.Unmarshal(buf, &out), "input %q", in)
	}
}

func TestCustomRules(t *testing.T) {
	s := New().
		Rule(FilterControl, TransformStrip).
		Rule(FilterQuote, TransformHexEncode)

	assert.Equal(t, "ab<22>c", s.Sanitize("a\nb\"c"))

	// First match wins
	s = New().
		Rule(FilterNonPrintable, TransformHexEncode).
		Rule(FilterControl, TransformStrip)
	assert.Equal(t, "<0a>", s.Sanitize("\n"))
}

func TestAppendReusesBuffer(t *testing.T) {
	s := ForPolicy(PolicyTxt)
	buf := make([]byte, 0, 64)
	buf = append(buf, "prefix "...)

	buf = s.AppendBytes(buf, []byte("x\ny"))
	assert.Equal(t, "prefix x<0a>y", string(buf))
}

func TestConcurrentUse(t *testing.T) {
	s := ForPolicy(PolicyTxt)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "a<0a>b", s.Sanitize("a\nb"))
			}
		}()
	}
	wg.Wait()
}

func TestValidText(t *testing.T) {
	assert.True(t, ValidText([]byte("hello")))
	assert.True(t, ValidText([]byte("héllo ✓")))
	assert.True(t, ValidText(nil))
	assert.False(t, ValidText([]byte{0xff, 0xfe}))
	assert.False(t, ValidText([]byte("trunc\xe2\x9c")))
}
