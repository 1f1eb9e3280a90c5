package blockrec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Accessors(t *testing.T) {
	r := NewRecord("record")
	assert.Equal(t, KindRecord, r.Kind)

	require.NoError(t, r.Add("identifier", "123"))
	require.NoError(t, r.Add(" TIME ", "20240101T120000"))
	err := r.Add("Identifier", "456")
	assert.ErrorIs(t, err, ErrDuplicateField)

	v, ok := r.Get("IDENTIFIER")
	assert.True(t, ok)
	assert.Equal(t, "123", v)
	assert.True(t, r.Has("time"))
	assert.False(t, r.Has("weight"))
	assert.Equal(t, "", r.Value("weight"))

	r.Set("identifier", "789")
	assert.Equal(t, []string{FieldIdentifier, FieldTime}, r.Names())
	assert.Equal(t, map[string]string{FieldIdentifier: "789", FieldTime: "20240101T120000"}, r.Map())

	removed := r.Remove("Identifier")
	require.NotNil(t, removed)
	assert.Equal(t, "789", removed.Value)
	assert.Nil(t, r.Remove("identifier"))
	assert.Equal(t, []string{FieldTime}, r.Names())
}

func TestRecord_Time(t *testing.T) {
	r := NewRecord(KindRecord)
	_, err := r.Time(FieldTime)
	assert.ErrorIs(t, err, ErrorPropertyNotFound)

	r.Set(FieldTime, "20240101T120000")
	dt, err := r.Time("time")
	require.NoError(t, err)
	assert.Equal(t, "20240101T120000", dt.String())
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord(KindRecord)
	r.Set(FieldIdentifier, "1")
	c := r.Clone()
	c.Set(FieldIdentifier, "2")
	assert.Equal(t, "1", r.Value(FieldIdentifier))
}
