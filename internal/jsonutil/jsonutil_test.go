package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"name"`
	Count  int    `json:"count,omitempty"`
	Hidden string `json:"-"`

	unexported string
}

func TestUnmarshalExtraSplitsUnknownKeys(t *testing.T) {
	var s sample
	extra, err := UnmarshalExtra([]byte(`{"name":"a","count":2,"mystery":true}`), &s)
	require.NoError(t, err)

	assert.Equal(t, "a", s.Name)
	assert.Equal(t, 2, s.Count)
	require.Contains(t, extra, "mystery")
	assert.NotContains(t, extra, "name")
	assert.Empty(t, s.unexported)
}

func TestUnmarshalExtraNilWhenNoUnknownKeys(t *testing.T) {
	var s sample
	extra, err := UnmarshalExtra([]byte(`{"name":"a"}`), &s)
	require.NoError(t, err)
	assert.Nil(t, extra)
}

func TestMarshalExtraMergesAndPrefersKnownFields(t *testing.T) {
	s := &sample{Name: "a"}
	out, err := MarshalExtra(s, map[string]json.RawMessage{
		"name":    json.RawMessage(`"clobbered"`),
		"mystery": json.RawMessage(`[1,2]`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","mystery":[1,2]}`, string(out))
}

func TestMarshalExtraWithoutExtraIsPlainEncoding(t *testing.T) {
	out, err := MarshalExtra(&sample{Name: "a", Count: 1}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":1}`, string(out))
}

func TestRoundTrip(t *testing.T) {
	wire := `{"name":"a","count":3,"x":{"deep":[true,null]}}`

	var s sample
	extra, err := UnmarshalExtra([]byte(wire), &s)
	require.NoError(t, err)

	out, err := MarshalExtra(&s, extra)
	require.NoError(t, err)
	assert.JSONEq(t, wire, string(out))
}
