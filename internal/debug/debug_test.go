package debug

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveAndRestoreState() func() {
	originalDebug := EnableDebug
	originalMode := MCPMode
	originalOutput := debugOutput
	originalFile := debugFile
	return func() {
		EnableDebug = originalDebug
		MCPMode = originalMode
		debugOutput = originalOutput
		debugFile = originalFile
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("CPPM_DEBUG", "")

	EnableDebug = "false"
	MCPMode = false
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	EnableDebug = "invalid"
	assert.False(t, IsDebugEnabled())

	t.Setenv("CPPM_DEBUG", "1")
	assert.True(t, IsDebugEnabled())

	SetMCPMode(true)
	assert.False(t, IsDebugEnabled())
}

func TestLog_ComponentTag(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	EnableDebug = "true"
	MCPMode = false

	LogExtract("line %d: no start\n", 4)
	LogSearch("query %q\n", "/a/b")
	Printf("plain\n")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:EXTRACT] line 4: no start")
	assert.Contains(t, out, `[DEBUG:SEARCH] query "/a/b"`)
	assert.Contains(t, out, "[DEBUG] plain")
}

func TestLog_SilentWhenDisabledOrMCP(t *testing.T) {
	defer saveAndRestoreState()()
	t.Setenv("CPPM_DEBUG", "")

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	EnableDebug = "false"
	LogWatch("ignored\n")
	assert.Empty(t, buf.String())

	EnableDebug = "true"
	MCPMode = true
	LogMCP("ignored\n")
	assert.Empty(t, buf.String())
}

func TestFatal_ReturnsError(t *testing.T) {
	defer saveAndRestoreState()()

	var buf bytes.Buffer
	SetDebugOutput(&buf)
	MCPMode = false

	err := Fatal("config %s broken", ".cppm.kdl")
	require.Error(t, err)
	assert.Equal(t, "fatal error: config .cppm.kdl broken", err.Error())
	assert.Contains(t, buf.String(), "[FATAL] config .cppm.kdl broken")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	path, err := InitDebugLogFile()
	require.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasSuffix(path, ".log"))
	require.NoError(t, CloseDebugLog())
	assert.NoError(t, CloseDebugLog())
}
