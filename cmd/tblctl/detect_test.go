package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCommand(t *testing.T) {
	resetFlags(t)
	in := newInstall(t)

	output, err := captureOutput(t, runDetect)
	require.NoError(t, err, output)
	assertContains(t, output, []string{"Game:     CS4 (4)", "Master:   " + in.master, "Packages: 2", "0001  items: " + in.items[1]})

	resetFlags(t)
	newInstall(t)
	jsonOut = true
	output, err = captureOutput(t, runDetect)
	require.NoError(t, err)
	assertJSON(t, output)
	assertContains(t, output, []string{`"game": "CS4"`, `"folder": 2`})
}
