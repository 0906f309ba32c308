package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	accepted := map[string]Format{
		"table":     FormatTable,
		"":          FormatTable, // empty picks the default
		"json":      FormatJSON,
		"JSON":      FormatJSON,
		"yaml":      FormatYAML,
		"yml":       FormatYAML,
		" table\t ": FormatTable, // surrounding whitespace is dropped
	}
	for input, want := range accepted {
		got, err := ParseFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should be rejected")
	}
}

func TestFormatString(t *testing.T) {
	for _, f := range []Format{FormatTable, FormatJSON, FormatYAML} {
		assert.Equal(t, string(f), f.String())
	}
}

func TestPrinterPrintDispatch(t *testing.T) {
	accounts := NewTableData("Username", "Friends")
	accounts.AddRow("alice", "2")
	accounts.AddRow("bob", "1")

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatTable, false)

		require.NoError(t, p.Print(accounts))
		assert.Contains(t, buf.String(), "USERNAME")
		assert.Contains(t, buf.String(), "alice")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatJSON, false)

		require.NoError(t, p.Print(map[string]string{"token": "abc123"}))
		assert.Contains(t, buf.String(), `"token": "abc123"`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatYAML, false)

		require.NoError(t, p.Print(map[string]string{"token": "abc123"}))
		assert.Contains(t, buf.String(), "token: abc123")
	})

	t.Run("table without a renderer falls back to JSON", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, FormatTable, false)

		require.NoError(t, p.Print(map[string]string{"token": "abc123"}))
		assert.Contains(t, buf.String(), `"token": "abc123"`)
	})
}

func TestPrinterMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, false)

	assert.Equal(t, FormatTable, p.Format())

	p.Println("chat server ready")
	p.Printf("listening on %s\n", "127.0.0.1:5555")
	p.Success("account created")
	p.Warning("token shown once")
	p.Error("duplicate username")

	out := buf.String()
	for _, want := range []string{
		"chat server ready",
		"listening on 127.0.0.1:5555",
		"account created",
		"token shown once",
		"duplicate username",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\033[", "plain printers must not emit ANSI codes")
}

func TestPrinterColor(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatTable, true)

	p.Success("account created")
	assert.Contains(t, buf.String(), "\033[32m")

	buf.Reset()
	p.Error("duplicate username")
	assert.Contains(t, buf.String(), "\033[31m")

	buf.Reset()
	p.Warning("token shown once")
	assert.Contains(t, buf.String(), "\033[33m")
}

func TestDefaultPrinter(t *testing.T) {
	p := DefaultPrinter()
	require.NotNil(t, p)
	assert.Equal(t, FormatTable, p.Format())
}
