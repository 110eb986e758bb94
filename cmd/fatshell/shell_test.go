package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	fat32 "github.com/silhavyj/FAT32"
	"github.com/silhavyj/FAT32/volume"
)

func testVolume(t *testing.T) (*volume.Volume, afero.Fs) {
	t.Helper()
	config := volume.Config{DiskPath: "disk.dat", ClusterSize: 128, DiskSize: 128 * 64}
	device := fat32.NewMemDevice(config.DiskSize)
	hostFS := afero.NewMemMapFs()
	vol, err := volume.MountDevice(device, hostFS, config)
	require.NoError(t, err)
	return vol, hostFS
}

func TestShellScriptDrivesVolume(t *testing.T) {
	vol, hostFS := testVolume(t)
	require.NoError(t, afero.WriteFile(hostFS, "note.txt", []byte("hi"), 0o644))

	script := strings.Join([]string{
		"mkdir doc",
		"in note.txt",
		"ls",
		"cd doc",
		"pwd",
		"exit",
	}, "\n")
	scriptFile, err := afero.TempFile(afero.NewOsFs(), "", "fatshell-script-*.txt")
	require.NoError(t, err)
	defer func() { _ = afero.NewOsFs().Remove(scriptFile.Name()) }()
	_, err = scriptFile.WriteString(script)
	require.NoError(t, err)
	require.NoError(t, scriptFile.Close())

	var out bytes.Buffer
	shell := NewShell(vol, strings.NewReader(""), &out)
	require.NoError(t, shell.RunScript(scriptFile.Name()))

	require.Contains(t, out.String(), "doc")
	require.Contains(t, out.String(), "note.txt")
	require.Contains(t, out.String(), "/doc")
}

func TestShellDispatchUnknownCommand(t *testing.T) {
	vol, _ := testVolume(t)
	var out bytes.Buffer
	shell := NewShell(vol, strings.NewReader(""), &out)
	result := shell.dispatch("frobnicate")
	require.Equal(t, errContinue, result)
	require.Contains(t, out.String(), "invalid command")
}

func TestShellDispatchExit(t *testing.T) {
	vol, _ := testVolume(t)
	var out bytes.Buffer
	shell := NewShell(vol, strings.NewReader(""), &out)
	require.Equal(t, errExit, shell.dispatch("exit"))
}

func TestShellDispatchMvCpArgOrder(t *testing.T) {
	vol, hostFS := testVolume(t)
	require.NoError(t, afero.WriteFile(hostFS, "a.txt", []byte("abc"), 0o644))
	require.NoError(t, vol.In("a.txt"))

	var out bytes.Buffer
	shell := NewShell(vol, strings.NewReader(""), &out)

	require.Equal(t, errContinue, shell.dispatch("mv a.txt b.txt"))
	var buf bytes.Buffer
	require.NoError(t, vol.Cat("b.txt", &buf))
	require.Equal(t, "abc", buf.String())

	require.Equal(t, errContinue, shell.dispatch("cp b.txt c.txt"))
	buf.Reset()
	require.NoError(t, vol.Cat("b.txt", &buf))
	require.Equal(t, "abc", buf.String())
	buf.Reset()
	require.NoError(t, vol.Cat("c.txt", &buf))
	require.Equal(t, "abc", buf.String())
}

func TestShellDispatchLoadRunsScriptAndPropagatesExit(t *testing.T) {
	vol, hostFS := testVolume(t)
	require.NoError(t, afero.WriteFile(hostFS, "note.txt", []byte("hi"), 0o644))

	script := strings.Join([]string{
		"in note.txt",
		"exit",
	}, "\n")
	scriptFile, err := afero.TempFile(afero.NewOsFs(), "", "fatshell-load-*.txt")
	require.NoError(t, err)
	defer func() { _ = afero.NewOsFs().Remove(scriptFile.Name()) }()
	_, err = scriptFile.WriteString(script)
	require.NoError(t, err)
	require.NoError(t, scriptFile.Close())

	var out bytes.Buffer
	shell := NewShell(vol, strings.NewReader(""), &out)
	require.Equal(t, errExit, shell.dispatch("load "+scriptFile.Name()))

	var buf bytes.Buffer
	require.NoError(t, vol.Cat("note.txt", &buf))
	require.Equal(t, "hi", buf.String())
}
