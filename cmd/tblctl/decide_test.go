package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/resolve"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in      string
		want    resolve.Decision
		wantErr bool
	}{
		{in: "a", want: resolve.Decision{Choice: resolve.RenameA}},
		{in: " B ", want: resolve.Decision{Choice: resolve.RenameB}},
		{in: "skip", want: resolve.Decision{Choice: resolve.Skip}},
		{in: "s", want: resolve.Decision{Choice: resolve.Skip}},
		{in: "b 4321", want: resolve.Decision{Choice: resolve.RenameB, Replacement: 4321, Override: true}},
		{in: "", wantErr: true},
		{in: "c", wantErr: true},
		{in: "s 12", wantErr: true},
		{in: "a 70000", wantErr: true},
		{in: "a 1 2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDecision(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testPrompt(input string) (*prompt, *bytes.Buffer) {
	var out bytes.Buffer
	return &prompt{in: bufio.NewReader(strings.NewReader(input)), out: &out}, &out
}

func masterConflict() resolve.Conflict {
	return resolve.Conflict{
		Space:       resolve.SpaceItem,
		ID:          500,
		A:           resolve.Side{Table: resolve.Table{Path: "t_item_en.tbl", Folder: resolve.Master}, Name: "Potion"},
		B:           resolve.Side{Table: resolve.Table{Path: "0001/t_item.tbl", Folder: 1}, Name: "Swimsuit"},
		Replacement: 501,
		AllowB:      true,
	}
}

func TestPromptDecider(t *testing.T) {
	p, out := testPrompt("x\na\nb 900\n")
	d := &promptDecider{p: p}

	got, err := d.Decide(masterConflict())
	require.NoError(t, err)
	assert.Equal(t, resolve.Decision{Choice: resolve.RenameB, Replacement: 900, Override: true}, got)

	text := out.String()
	assert.Contains(t, text, `b) "Swimsuit" in 0001/t_item.tbl (package 0001)`)
	assert.Contains(t, text, "renumber b to 501")
	assert.NotContains(t, text, "renumber a to")
	assert.Contains(t, text, `invalid choice: "x"`)
	assert.Contains(t, text, "rename-a is not allowed")
}

func TestPromptDecider_LastLineWithoutNewline(t *testing.T) {
	p, _ := testPrompt("s")
	got, err := (&promptDecider{p: p}).Decide(masterConflict())
	require.NoError(t, err)
	assert.Equal(t, resolve.Skip, got.Choice)
}

func TestPromptDecider_InputClosed(t *testing.T) {
	p, _ := testPrompt("")
	_, err := (&promptDecider{p: p}).Decide(masterConflict())
	require.ErrorIs(t, err, errInputClosed)
}

func TestPromptPicker(t *testing.T) {
	p, out := testPrompt("9\ndat_fr\n")
	got, err := promptPicker(p)("dat", []string{"dat", "dat_en", "dat_fr"})
	require.NoError(t, err)
	assert.Equal(t, "dat_fr", got)
	assert.Contains(t, out.String(), "Invalid choice")

	p, _ = testPrompt("2\n")
	got, err = promptPicker(p)("text", []string{"text", "text_jp"})
	require.NoError(t, err)
	assert.Equal(t, "text_jp", got)
}

func TestScriptDecider(t *testing.T) {
	d, err := parseDecisions(strings.NewReader(`
default: a
rules:
  - space: dlc
    id: 30
    choice: b
  - id: 500
    choice: b
    replacement: 4321
`))
	require.NoError(t, err)

	c := masterConflict()
	got, err := d.Decide(c)
	require.NoError(t, err)
	assert.Equal(t, resolve.Decision{Choice: resolve.RenameB, Replacement: 4321, Override: true}, got)

	c.ID = 501
	got, err = d.Decide(c)
	require.NoError(t, err)
	assert.Equal(t, resolve.Skip, got.Choice, "default falls back to skip where it is not allowed")

	c.AllowA = true
	got, err = d.Decide(c)
	require.NoError(t, err)
	assert.Equal(t, resolve.RenameA, got.Choice)

	dlc := resolve.Conflict{Space: resolve.SpaceDLC, ID: 30, AllowA: true, AllowB: true}
	got, err = d.Decide(dlc)
	require.NoError(t, err)
	assert.Equal(t, resolve.RenameB, got.Choice)

	dlc.ID = 500
	got, err = d.Decide(dlc)
	require.NoError(t, err)
	assert.Equal(t, resolve.RenameB, got.Choice, "rules without a space match both spaces")
}

func TestParseDecisions_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"bad default":      "default: maybe\n",
		"bad space":        "rules:\n  - space: quest\n    id: 1\n    choice: a\n",
		"bad choice":       "rules:\n  - id: 1\n    choice: c\n",
		"skip replacement": "rules:\n  - id: 1\n    choice: skip\n    replacement: 5\n",
		"unknown field":    "defualt: a\n",
		"id out of range":  "rules:\n  - id: 70000\n    choice: a\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseDecisions(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestParseDecisions_Empty(t *testing.T) {
	d, err := parseDecisions(strings.NewReader(""))
	require.NoError(t, err)
	got, err := d.Decide(masterConflict())
	require.NoError(t, err)
	assert.Equal(t, resolve.Skip, got.Choice)
}
