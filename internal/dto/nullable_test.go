package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableIDDistinguishesAbsentFromNull(t *testing.T) {
	var req struct {
		Sprint NullableID `json:"sprint"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.False(t, req.Sprint.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"sprint": null}`), &req))
	assert.True(t, req.Sprint.Set)
	assert.Nil(t, req.Sprint.Value)

	require.NoError(t, json.Unmarshal([]byte(`{"sprint": 7}`), &req))
	assert.True(t, req.Sprint.Set)
	require.NotNil(t, req.Sprint.Value)
	assert.Equal(t, uint64(7), *req.Sprint.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"sprint": "x"}`), &req))
}
