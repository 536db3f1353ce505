package xrelay

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	data := GetVersion()
	require.NotEmpty(t, data.Version)
	require.NotEmpty(t, data.GitRev)
	require.NotEmpty(t, data.GitBranch)
	require.NotEmpty(t, data.BuildDate)
	require.Equal(t, runtime.Version(), data.GoVersion)
	require.Equal(t, runtime.GOOS, data.OS)
	require.Equal(t, runtime.GOARCH, data.Arch)
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	PrintVersion(&out)
	require.True(t, strings.HasPrefix(out.String(), AppName+" "+Version+"\n"))
	require.Contains(t, out.String(), "OS/Arch:      "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestLogFields(t *testing.T) {
	fields := GetVersion().LogFields()
	require.Len(t, fields, 12)
	for i := 0; i < len(fields); i += 2 {
		_, ok := fields[i].(string)
		require.True(t, ok, "key %d is not a string", i)
	}
	require.Equal(t, "version", fields[0])
	require.Equal(t, Version, fields[1])
}
