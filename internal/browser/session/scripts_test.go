package session

import (
	"strings"
	"testing"
	"unicode/utf8"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSString(t *testing.T) {
	tests := map[string]string{
		"href":          `"href"`,
		`data-"quoted"`: `"data-\"quoted\""`,
		"back\\slash":   `"back\\slash"`,
		"line\nbreak":   `"line\nbreak"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, jsString(in), in)
	}
}

func TestScriptWrappers(t *testing.T) {
	fn := jsAttribute(`x"); alert(1); ("`)
	assert.Equal(t, `function() { return this.getAttribute("x\"); alert(1); (\""); }`, fn)

	commit := jsCommitFill(`a"b`)
	assert.Contains(t, commit, `if (got !== "a\"b")`)
	assert.Contains(t, jsPrepareFill, "activeElement !== this")
	assert.Contains(t, jsPrepareFill, "this.readOnly")

	wrapped := onConnected(jsText)
	assert.Contains(t, wrapped, "this.isConnected")
	assert.Contains(t, wrapped, "("+jsText+").call(this)")
}

// FuzzJSString checks that every quoted literal decodes back to its input.
func FuzzJSString(f *testing.F) {
	f.Add([]byte("href"))
	f.Add([]byte("</script><script>alert(1)</script>"))
	f.Add([]byte("  \x00"))

	f.Fuzz(func(t *testing.T, data []byte) {
		consumer := fuzz.NewConsumer(data)
		s, err := consumer.GetString()
		if err != nil || !utf8.ValidString(s) {
			t.Skip()
		}

		quoted := jsString(s)
		require.True(t, strings.HasPrefix(quoted, `"`) && strings.HasSuffix(quoted, `"`), quoted)

		var back string
		require.NoError(t, json.Unmarshal([]byte(quoted), &back))
		assert.Equal(t, s, back)
	})
}
