package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableData(t *testing.T) {
	table := NewTableData("Username", "Friends", "Blocked")

	assert.Equal(t, []string{"Username", "Friends", "Blocked"}, table.Headers())
	assert.Empty(t, table.Rows())

	table.AddRow("alice", "2", "no")
	table.AddRow("bob", "1", "yes")

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "2", "no"}, rows[0])
	assert.Equal(t, []string{"bob", "1", "yes"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Username", "Friends")
	table.AddRow("alice", "2")
	table.AddRow("bob", "0")

	var buf bytes.Buffer
	err := PrintTable(&buf, table)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "USERNAME")
	assert.Contains(t, output, "FRIENDS")
	assert.Contains(t, output, "alice")
	assert.Contains(t, output, "bob")
}

func TestKeyValueTable(t *testing.T) {
	rows := [][2]string{
		{"Output", "/tmp/chat.db.backup"},
		{"Type", "sqlite"},
	}

	var buf bytes.Buffer
	err := KeyValueTable(&buf, rows)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Output")
	assert.Contains(t, output, "/tmp/chat.db.backup")
	assert.Contains(t, output, "Type")
	assert.Contains(t, output, "sqlite")
	// Keys keep their casing, unlike PrintTable headers.
	assert.NotContains(t, output, "OUTPUT")
}
