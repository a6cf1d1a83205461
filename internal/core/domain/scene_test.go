package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

const introScene = `{
	"hash": "0",
	"left_border": 10,
	"items": [
		{"id": "door", "spine": "door_anim", "x": 1.50},
		{"spine": "lamp"},
		{"spine": ""}
	]
}`

func TestScene_ComputeHashIgnoresHashField(t *testing.T) {
	a, err := domain.ParseScene([]byte(`{"hash": "abc", "items": []}`))
	require.NoError(t, err)
	b, err := domain.ParseScene([]byte(`{"items": [], "hash": "something else"}`))
	require.NoError(t, err)

	ha, err := a.ComputeHash()
	require.NoError(t, err)
	hb, err := b.ComputeHash()
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 16)
}

func TestScene_RehashIsStable(t *testing.T) {
	scene, err := domain.ParseScene([]byte(introScene))
	require.NoError(t, err)

	changed, err := scene.Rehash()
	require.NoError(t, err)
	assert.True(t, changed, "stale hash must be replaced")
	first := scene.StoredHash()

	changed, err = scene.Rehash()
	require.NoError(t, err)
	assert.False(t, changed, "second rehash must be a no-op")
	assert.Equal(t, first, scene.StoredHash())

	// Round trip through the written form keeps the digest.
	data, err := scene.Marshal()
	require.NoError(t, err)
	reparsed, err := domain.ParseScene(data)
	require.NoError(t, err)

	again, err := reparsed.ComputeHash()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, first, reparsed.StoredHash())
}

func TestScene_ContentChangeChangesHash(t *testing.T) {
	a, err := domain.ParseScene([]byte(`{"hash": "", "items": [{"spine": "a"}]}`))
	require.NoError(t, err)
	b, err := domain.ParseScene([]byte(`{"hash": "", "items": [{"spine": "b"}]}`))
	require.NoError(t, err)

	ha, err := a.ComputeHash()
	require.NoError(t, err)
	hb, err := b.ComputeHash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestScene_PreservesNumberText(t *testing.T) {
	scene, err := domain.ParseScene([]byte(introScene))
	require.NoError(t, err)

	data, err := scene.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "1.50")
}

func TestScene_Items(t *testing.T) {
	scene, err := domain.ParseScene([]byte(introScene))
	require.NoError(t, err)

	assert.Equal(t, []string{"door"}, scene.ItemIDs())
	assert.Equal(t, []string{"door", "lamp"}, scene.ItemNames())
}

func TestScene_ItemNamesEmpty(t *testing.T) {
	scene, err := domain.ParseScene([]byte(`{"items":[],"hash":"0"}`))
	require.NoError(t, err)

	names := scene.ItemNames()
	require.NotNil(t, names)
	assert.Empty(t, names)
}

func TestParseScene_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{"items": [`},
		{name: "not an object", data: `[1, 2]`},
		{name: "null", data: `null`},
		{name: "items not a list", data: `{"items": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseScene([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, domain.ErrMalformedSource.Error())
		})
	}
}

func TestScene_NumericStoredHash(t *testing.T) {
	scene, err := domain.ParseScene([]byte(`{"hash": 0}`))
	require.NoError(t, err)
	assert.Equal(t, "0", scene.StoredHash())
}
