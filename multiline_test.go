// FILE: alteon/multiline_test.go
package alteon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCaptureBodyVerbatim tests that payload lines dodge normalization
func TestCaptureBodyVerbatim(t *testing.T) {
	text := "/c/slb/appshape/script 7\n" +
		"\timport text\n" +
		"  set  static::code   \"200\"\n" +
		"\n" +
		"\t/* not a comment here */\n" +
		"-----END\n"

	p := New()
	res := p.Parse(text)

	require.Len(t, res.Modules, 1)
	b := res.Modules[0]
	require.NotNil(t, b.Multiline)
	// Spacing, blank lines and comment lookalikes pass through untouched.
	assert.Equal(t, "  set  static::code   \"200\"\n\n\t/* not a comment here */", b.Multiline.Body)
	assert.False(t, b.Multiline.Incomplete)
}

// TestCaptureEndMarker tests the end sentinel boundary rules
func TestCaptureEndMarker(t *testing.T) {
	p := New()

	t.Run("EndLineOutsideBody", func(t *testing.T) {
		res := p.Parse("/c/slb/appshape/script 7\n\timport text\npayload\n-----END\n")
		require.Len(t, res.Modules, 1)
		b := res.Modules[0]
		assert.Equal(t, "payload", b.Multiline.Body)
		// The marker still belongs to the block's raw span.
		assert.True(t, strings.HasSuffix(b.RawText, "\n-----END"))
		assert.Equal(t, 4, b.LineRange.End)
	})

	t.Run("IndentedLookalikeStaysBody", func(t *testing.T) {
		res := p.Parse("/c/slb/appshape/script 7\n\timport text\n -----END\nx -----END y\n-----END\n")
		require.Len(t, res.Modules, 1)
		b := res.Modules[0]
		assert.Equal(t, " -----END\nx -----END y", b.Multiline.Body)
		assert.False(t, b.Multiline.Incomplete)
	})

	t.Run("PrefixMatchSuffices", func(t *testing.T) {
		res := p.Parse("/c/slb/ssl/certs/import cert \"A\" text\nDATA\n-----END CERTIFICATE-----\n")
		require.Len(t, res.Modules, 1)
		assert.Equal(t, "DATA", res.Modules[0].Multiline.Body)
		assert.False(t, res.Modules[0].Multiline.Incomplete)
	})
}

// TestCaptureUnterminated tests end-of-input inside a capture
func TestCaptureUnterminated(t *testing.T) {
	p := New()
	res := p.Parse("/c/slb/appshape/script 10\n\tena\n\timport text\nline one\nline two")

	require.Len(t, res.Modules, 1)
	b := res.Modules[0]
	assert.Equal(t, ModuleScript, b.Type)
	require.NotNil(t, b.Multiline)
	assert.True(t, b.Multiline.Incomplete)
	assert.Equal(t, "line one\nline two", b.Multiline.Body)
	assert.Equal(t, LineRange{Start: 1, End: 5}, b.LineRange)
}

// TestCaptureTriggerStaysInLines tests that the import clause remains a
// command line of its block
func TestCaptureTriggerStaysInLines(t *testing.T) {
	p := New()
	res := p.Parse("/c/slb/appshape/script 3\n\tena\n\timport text\nbody\n-----END\n\tcont 1024\n")

	require.Len(t, res.Modules, 1)
	b := res.Modules[0]
	assert.Equal(t, []string{"ena", "import text", "cont 1024"}, b.Lines)
	assert.Equal(t, ModuleScript, b.Type)
	assert.Equal(t, "3", b.Multiline.ScriptID)
	assert.Equal(t, "body", b.Multiline.Body)
}

// TestCertImportForms tests the certificate clause variants
func TestCertImportForms(t *testing.T) {
	p := New()

	tests := []struct {
		name     string
		header   string
		certType string
		certName string
	}{
		{"Cert", `/c/slb/ssl/certs/import cert "WebCert" text`, "cert", "WebCert"},
		{"Key", `/c/slb/ssl/certs/import key "WebKey" text`, "key", "WebKey"},
		{"Request", `/c/slb/ssl/certs/import request "CSR-1" text`, "request", "CSR-1"},
		{"UpperCase", `/c/slb/ssl/certs/import CERT "Shouty" TEXT`, "CERT", "Shouty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse(tt.header + "\nPEMDATA\n-----END CERTIFICATE-----\n")
			require.Len(t, res.Modules, 1)
			b := res.Modules[0]
			assert.Equal(t, ModuleCert, b.Type)
			require.NotNil(t, b.Multiline)
			assert.Equal(t, tt.certType, b.Multiline.CertType)
			assert.Equal(t, tt.certName, b.Multiline.CertName)
			assert.Equal(t, "PEMDATA", b.Multiline.Body)
		})
	}
}

// TestScriptImportHeaderForm tests the fused header spelling of the
// script import clause
func TestScriptImportHeaderForm(t *testing.T) {
	p := New()
	res := p.Parse("/c/slb/appshape/script 10/import text\nwhen INIT {\n}\n-----END\n")

	require.Len(t, res.Modules, 1)
	b := res.Modules[0]
	assert.Equal(t, "/c/slb/appshape/script", b.Path)
	assert.Equal(t, "10", b.Index)
	assert.Equal(t, ModuleScript, b.Type)
	assert.Equal(t, "10", b.Multiline.ScriptID)
	assert.Equal(t, "when INIT {\n}", b.Multiline.Body)
	assert.Empty(t, b.Lines)
}

// TestCustomSentinel tests a user-supplied capture kind
func TestCustomSentinel(t *testing.T) {
	p, err := NewBuilder().
		WithSentinel("blob", `(?i)upload\s+blob\s+"([^"]+)"\s+data`, "=====END BLOB").
		Build()
	require.NoError(t, err)

	t.Run("HeaderForm", func(t *testing.T) {
		res := p.Parse("/c/sys/blob/upload blob \"Payload\" data\nAAAA\nBBBB\n=====END BLOB\n")
		require.Len(t, res.Modules, 1)
		b := res.Modules[0]
		assert.Equal(t, ModuleType("multiline_blob"), b.Type)
		assert.True(t, b.IsMultiline())
		require.NotNil(t, b.Multiline)
		assert.Equal(t, "Payload", b.Multiline.CertName)
		assert.Equal(t, "AAAA\nBBBB", b.Multiline.Body)
	})

	t.Run("SubLineForm", func(t *testing.T) {
		res := p.Parse("/c/sys/blob 7\n\tena\n\tupload blob \"Inner\" data\nCCCC\n=====END BLOB\n")
		require.Len(t, res.Modules, 1)
		b := res.Modules[0]
		assert.Equal(t, ModuleType("multiline_blob"), b.Type)
		assert.Equal(t, "7", b.Index)
		assert.Equal(t, []string{"ena", `upload blob "Inner" data`}, b.Lines)
		assert.Equal(t, "CCCC", b.Multiline.Body)
	})

	t.Run("BuiltinsStillActive", func(t *testing.T) {
		res := p.Parse("/c/slb/ssl/certs/import cert \"Still\" text\nX\n-----END CERTIFICATE-----\n")
		require.Len(t, res.Modules, 1)
		assert.Equal(t, ModuleCert, res.Modules[0].Type)
	})
}

// TestCapturesBackToBack tests consecutive captured blocks
func TestCapturesBackToBack(t *testing.T) {
	text := "/c/slb/ssl/certs/import cert \"A\" text\nONE\n-----END CERTIFICATE-----\n" +
		"/c/slb/ssl/certs/import key \"B\" text\nTWO\n-----END RSA PRIVATE KEY-----\n"

	p := New()
	res := p.Parse(text)

	require.Len(t, res.Modules, 2)
	assert.Equal(t, "ONE", res.Modules[0].Multiline.Body)
	assert.Equal(t, "A", res.Modules[0].Multiline.CertName)
	assert.Equal(t, "TWO", res.Modules[1].Multiline.Body)
	assert.Equal(t, "B", res.Modules[1].Multiline.CertName)
}

// TestSentinelPatternError tests rejection of a broken begin pattern
func TestSentinelPatternError(t *testing.T) {
	_, err := NewBuilder().WithSentinel("bad", "([unclosed", "END").Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSentinelPattern)
}
