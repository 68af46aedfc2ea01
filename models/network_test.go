package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("SAGA")
	require.NoError(t, err)
	assert.Equal(t, NetworkSaga, n)

	_, err = ParseNetwork("mainnet")
	assert.Error(t, err)

	assert.Equal(t, NetworkSepolia, NetworkOrDefault(""))
	assert.Equal(t, NetworkSaga, NetworkOrDefault("saga"))
}

func TestNetworkForChainID(t *testing.T) {
	n, ok := NetworkForChainID(big.NewInt(11155111))
	assert.True(t, ok)
	assert.Equal(t, NetworkSepolia, n)

	n, ok = NetworkForChainID(new(big.Int).SetUint64(2744440729579000))
	assert.True(t, ok)
	assert.Equal(t, NetworkSaga, n)

	_, ok = NetworkForChainID(big.NewInt(1))
	assert.False(t, ok)
	_, ok = NetworkForChainID(nil)
	assert.False(t, ok)
}

func TestToggle(t *testing.T) {
	assert.Equal(t, NetworkSaga, NetworkSepolia.Toggle())
	assert.Equal(t, NetworkSepolia, NetworkSaga.Toggle())
}

func TestFormatKST(t *testing.T) {
	ts := time.Date(2024, 3, 1, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-02 05:30:00", FormatKST(ts))
}

func TestCommentActionValid(t *testing.T) {
	assert.True(t, CommentActionLike.Valid())
	assert.False(t, CommentAction("archive").Valid())
}
