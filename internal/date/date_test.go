package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestParse(t *testing.T) {
	d, err := Parse("2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, New(2024, time.March, 9), d)
	assert.Equal(t, "2024-03-09", d.String())

	_, err = Parse("09/03/2024")
	assert.Error(t, err)
}

func TestParseOrToday(t *testing.T) {
	today := New(2024, time.June, 15)
	assert.Equal(t, today, ParseOrToday("", today))
	assert.Equal(t, today, ParseOrToday("not a date", today))
	assert.Equal(t, New(2024, time.January, 2), ParseOrToday("2024-01-02", today))
	assert.Equal(t, New(2024, time.January, 5), ParseOrToday("2024-1-5", today), "unpadded fields")
	assert.Equal(t, New(2024, time.November, 30), ParseOrToday(" 2024-11-30 ", today))
	assert.Equal(t, today, ParseOrToday("2024-13-40", today), "no rollover")
	assert.Equal(t, today, ParseOrToday("2023-2-29", today))
	assert.Equal(t, today, ParseOrToday("2024-01", today))
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	late := time.Date(2024, time.May, 31, 23, 30, 0, 0, loc)
	assert.Equal(t, New(2024, time.May, 31), Normalize(late), "uses the calendar of the value's own zone")
}

func TestString_Blank(t *testing.T) {
	assert.Equal(t, "", Date{}.String())
	assert.Equal(t, "0002-01-05", New(2, time.January, 5).String(), "zero padded")
}

func TestMax(t *testing.T) {
	a := New(2024, time.January, 1)
	b := New(2024, time.January, 9)
	assert.Equal(t, b, Max(a, b, Date{}))
	assert.True(t, Max().IsZero())
}

type yamlHolder struct {
	Start      Date `yaml:"start"`
	Constraint Date `yaml:"constraint,omitempty"`
}

func TestYAML(t *testing.T) {
	out, err := yaml.Marshal(yamlHolder{Start: New(2024, time.January, 1)})
	require.NoError(t, err)
	assert.Contains(t, string(out), "2024-01-01")
	assert.NotContains(t, string(out), "constraint")

	var h yamlHolder
	require.NoError(t, yaml.Unmarshal([]byte("start: 2024-02-03\nconstraint: \"\"\n"), &h))
	assert.Equal(t, New(2024, time.February, 3), h.Start)
	assert.True(t, h.Constraint.IsZero(), "empty decodes to blank")

	require.NoError(t, yaml.Unmarshal([]byte("start: 2024-3-7\n"), &h))
	assert.Equal(t, New(2024, time.March, 7), h.Start)

	require.NoError(t, yaml.Unmarshal([]byte("start: garbage\n"), &h))
	assert.Equal(t, Today(), h.Start, "malformed decodes to today")
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(New(2024, time.December, 25))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-12-25"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`"2023-07-04"`), &d))
	assert.Equal(t, New(2023, time.July, 4), d)
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}
