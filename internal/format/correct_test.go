package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

func TestCorrectShortBlockSize(t *testing.T) {
	v := schema.ColdSteel3
	p := twoItems(v)
	good := testutil.Table([]testutil.Section{{Name: "item", Count: 2}},
		testutil.Entry("item", p[0]), testutil.Entry("item", p[1]))
	bad := testutil.Table([]testutil.Section{{Name: "item", Count: 2}},
		testutil.EntryWithSize("item", uint16(len(p[0])-1), p[0]), testutil.Entry("item", p[1]))
	require.False(t, Validate(bad, v))

	fixed, c, err := Correct(bad, v)
	require.NoError(t, err)
	assert.Equal(t, good, fixed)
	assert.Equal(t, 2, c.Entries)
	require.Len(t, c.Fixes, 1)
	assert.Equal(t, FieldBlockSize, c.Fixes[0].Field)
	assert.Equal(t, len(p[0])-1, c.Fixes[0].Old)
	assert.Equal(t, len(p[0]), c.Fixes[0].New)
	assert.True(t, Validate(fixed, v))
}

func TestCorrectCountsAndPadding(t *testing.T) {
	v := schema.ColdSteel4
	p := twoItems(v)
	data := testutil.Table([]testutil.Section{{Name: "item", Count: 7}, {Name: "item_q", Count: 3}},
		testutil.Entry("item", p[0]), testutil.EntryWithSize("item", 3, p[1]))
	data = append(data, make([]byte, 32)...)

	fixed, c, err := Correct(data, v)
	require.NoError(t, err)
	require.NoError(t, Check(fixed, v))

	tbl, err := Parse(fixed)
	require.NoError(t, err)
	assert.Zero(t, tbl.Padding)
	assert.Equal(t, int32(2), tbl.Sections[0].DeclaredCount)
	assert.Equal(t, int32(0), tbl.Sections[1].DeclaredCount)

	fields := map[string]int{}
	for _, f := range c.Fixes {
		fields[f.Field]++
	}
	assert.Equal(t, map[string]int{FieldPadding: 1, FieldBlockSize: 1, FieldDeclaredCount: 2}, fields)
	assert.True(t, c.Changed())
}

func TestCorrectIdempotent(t *testing.T) {
	v := schema.Reverie
	data := testutil.Table([]testutil.Section{{Name: "item", Count: 0}, {Name: "item_e", Count: 5}},
		testutil.EntryWithSize("item", 1, testutil.ItemPayload(v, "item", testutil.Item{ID: 3, Name: "x"})),
		testutil.EntryWithSize("item_e", 900, testutil.ItemPayload(v, "item_e", testutil.Item{ID: 4, Name: "y"})),
	)
	data = append(data, 0, 0, 0)

	once, _, err := Correct(data, v)
	require.NoError(t, err)
	twice, c, err := Correct(once, v)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.False(t, c.Changed())
	assert.True(t, Validate(twice, v))
}

func TestCorrectUnmeasurableKeepsStoredSize(t *testing.T) {
	data := testutil.Table([]testutil.Section{{Name: schema.EntryAttach, Count: 9}},
		testutil.Entry(schema.EntryAttach, testutil.AttachPayload(1, 500, "C_CHR001")))

	fixed, c, err := Correct(data, schema.ColdSteel4)
	require.NoError(t, err)
	require.Len(t, c.Fixes, 1)
	assert.Equal(t, FieldDeclaredCount, c.Fixes[0].Field)
	assert.True(t, Validate(fixed, schema.ColdSteel4))
}

func TestCorrectFailures(t *testing.T) {
	v := schema.ColdSteel3
	p := twoItems(v)

	_, _, err := Correct([]byte{1, 0}, v)
	require.ErrorIs(t, err, ErrTruncated)

	_, _, err = Correct(testutil.ItemTable(v, testutil.Item{ID: 1}), schema.VariantUnknown)
	require.ErrorIs(t, err, schema.ErrUnsupportedVariant)

	undeclared := testutil.Table([]testutil.Section{{Name: "item", Count: 1}},
		testutil.Entry("mystery", []byte{1, 2}))
	_, _, err = Correct(undeclared, v)
	require.ErrorIs(t, err, ErrUnknownEntryType)

	cut := testutil.Table([]testutil.Section{{Name: "item", Count: 1}}, testutil.Entry("item", p[0]))
	_, _, err = Correct(cut[:len(cut)-4], v)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCorrectDoesNotTouchInput(t *testing.T) {
	v := schema.ColdSteel3
	p := twoItems(v)
	bad := testutil.Table([]testutil.Section{{Name: "item", Count: 5}}, testutil.Entry("item", p[0]))
	orig := append([]byte(nil), bad...)

	_, _, err := Correct(bad, v)
	require.NoError(t, err)
	assert.Equal(t, orig, bad)
}
