package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"renderer error", CodeMissingNodeOp, "Node operation missing", CategoryRenderer},
		{"extension error", CodeSetupFailed, "Extension setup failed", CategoryExtension},
		{"hmr error", CodeHotInvalidated, "Hot update invalidated", CategoryHMR},
		{"config error", CodeInvalidConfig, "Invalid configuration", CategoryConfig},
		{"unknown code", "W999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeHotInvalidated).WithSubject("count").WithDetail("5 -> 6")
	assert.Equal(t, "W120: Hot update invalidated (count): 5 -> 6", err.Error())

	plain := Newf(CategoryCLI, "file %q not found", "x.go")
	assert.Equal(t, `file "x.go" not found`, plain.Error())
}

func TestWrapIsAndAs(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New(CodeInvalidConfig).Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, New(CodeInvalidConfig))
	assert.NotErrorIs(t, err, New(CodeConfigNotFound))

	wrapped := fmt.Errorf("loading: %w", err)
	var we *Error
	require.True(t, stderrors.As(wrapped, &we))
	assert.Equal(t, CodeInvalidConfig, we.Code)
	assert.True(t, HasCode(wrapped, CodeInvalidConfig))
	assert.False(t, HasCode(wrapped, CodeHotRender))
}

func TestHasCodeNested(t *testing.T) {
	inner := New(CodeSetupFailed)
	outer := New(CodeHotRender).Wrap(inner)
	assert.True(t, HasCode(outer, CodeSetupFailed))
	assert.False(t, HasCode(nil, CodeSetupFailed))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, CodeInvalidConfig))

	existing := New(CodeHotRender)
	assert.Same(t, existing, FromError(fmt.Errorf("x: %w", existing), CodeInvalidConfig))

	converted := FromError(stderrors.New("raw"), CodeInvalidConfig)
	assert.Equal(t, CodeInvalidConfig, converted.Code)
	assert.EqualError(t, converted.Unwrap(), "raw")
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeSetupFailed).
		WithSubject("devtools").
		WithSuggestion("Check the extension's setup hook").
		Wrap(stderrors.New("nil context"))

	out := err.Format()
	assert.Contains(t, out, "ERROR W111: Extension setup failed (devtools)")
	assert.Contains(t, out, "Caused by: nil context")
	assert.Contains(t, out, "Hint: Check the extension's setup hook")
	assert.Equal(t, "W111 [devtools]: Extension setup failed", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	err := New(CodeHotInvalidated).WithSubject("count").Wrap(stderrors.New("changed"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(err.FormatJSON()), &decoded))
	assert.Equal(t, "W120", decoded["code"])
	assert.Equal(t, "hmr", decoded["category"])
	assert.Equal(t, "count", decoded["subject"])
	assert.Equal(t, "changed", decoded["cause"])
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, stderrors.New("plain"))
	assert.Contains(t, buf.String(), "ERROR: plain")

	buf.Reset()
	Print(&buf, New(CodeUnknownExt))
	assert.Contains(t, buf.String(), "W114")
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 20)
	}
	assert.Nil(t, wrapText("", 10))
}

func TestAllCodesHaveTemplates(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		require.True(t, ok)
		assert.NotEmpty(t, tmpl.Message, code)
		assert.NotEmpty(t, tmpl.Category, code)
	}
}
