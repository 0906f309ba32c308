package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	Username string `json:"username" yaml:"username"`
	Friends  int    `json:"friends" yaml:"friends"`
}

func TestPrintJSON(t *testing.T) {
	data := testUser{Username: "alice", Friends: 2}

	var buf bytes.Buffer
	err := PrintJSON(&buf, data)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `"username": "alice"`)
	assert.Contains(t, output, `"friends": 2`)
}

func TestPrintJSONArray(t *testing.T) {
	data := []testUser{
		{Username: "alice", Friends: 1},
		{Username: "bob", Friends: 0},
	}

	var buf bytes.Buffer
	err := PrintJSON(&buf, data)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `"username": "alice"`)
	assert.Contains(t, output, `"username": "bob"`)
}

func TestPrintYAML(t *testing.T) {
	data := testUser{Username: "alice", Friends: 2}

	var buf bytes.Buffer
	err := PrintYAML(&buf, data)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "username: alice")
	assert.Contains(t, output, "friends: 2")
}

func TestPrintYAMLArray(t *testing.T) {
	data := []testUser{
		{Username: "alice"},
		{Username: "bob"},
	}

	var buf bytes.Buffer
	err := PrintYAML(&buf, data)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "- username: alice")
	assert.Contains(t, output, "- username: bob")
}
