package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name    string    `json:"name"`
	Count   int       `json:"count"`
	Percent []float64 `json:"percent"`
}

func TestCodecs(t *testing.T) {
	in := entry{Name: "cluster", Count: 3, Percent: []float64{12.5, 50}}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			b, err := c.Marshal(in)
			require.NoError(t, err)
			assert.Contains(t, string(b), `"name"`)

			var out entry
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestByName(t *testing.T) {
	c, err := ByName("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, Default.Name(), c.Name())

	_, err = ByName("msgpack")
	require.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, map[string]int{"a": 1}))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
}
