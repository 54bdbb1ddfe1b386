package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectKeptPreservesOriginalBytes(t *testing.T) {
	flat := []json.RawMessage{
		raw(`{"id":0,"apy":"4.2%"}`),
		raw(`{"id":1}`),
		raw(`{"id":2}`),
	}

	kept := selectKept(flat, []int{2, 0})

	assert.Equal(t, []json.RawMessage{flat[2], flat[0]}, kept)
}

func TestSelectKeptDropsOutOfRangeAndDuplicates(t *testing.T) {
	flat := []json.RawMessage{raw(`{"id":0}`), raw(`{"id":1}`)}

	kept := selectKept(flat, []int{-1, 0, 0, 5, 1})

	assert.Equal(t, []json.RawMessage{flat[0], flat[1]}, kept)
}

func TestSelectKeptEmptyIndices(t *testing.T) {
	kept := selectKept([]json.RawMessage{raw(`{}`)}, nil)
	assert.Empty(t, kept)
}

func TestShortWallet(t *testing.T) {
	assert.Equal(t, "0xabc", shortWallet("0xabc"))
	assert.Equal(t, "0x742d...f44e",
		shortWallet("0x742d35Cc6634C0532925a3b844Bc454e4438f44e"))
}
