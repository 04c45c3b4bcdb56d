package hashutil_test

import (
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
	"lukechampine.com/blake3"
)

func TestHashBytes_KnownVectors(t *testing.T) {
	tests := []struct {
		algo     hashutil.HashAlgo
		input    string
		expected string
	}{
		{hashutil.HashAlgoSHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{hashutil.HashAlgoSHA256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{hashutil.HashAlgoBLAKE3, "", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{hashutil.HashAlgoBLAKE3, "abc", "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}

	for _, tt := range tests {
		t.Run(string(tt.algo)+"/"+tt.input, func(t *testing.T) {
			result, err := hashutil.HashBytes([]byte(tt.input), tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHashBytes_BLAKE3MatchesLibrary(t *testing.T) {
	export := []byte("# Example Blog\n\n1. [Hello World](#post-11)\n")
	sum := blake3.Sum256(export)

	result, err := hashutil.HashBytes(export, hashutil.HashAlgoBLAKE3)

	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), result)
	assert.Len(t, result, 64)
}

func TestHashBytes_DifferentContentDifferentHash(t *testing.T) {
	first, err := hashutil.HashBytes([]byte("images/post_0_1.jpg"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	second, err := hashutil.HashBytes([]byte("images/post_0_2.jpg"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("data"), "md5")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")
}

func TestNewHasher_StreamingMatchesHashBytes(t *testing.T) {
	payload := strings.Repeat("streamed image bytes ", 512)

	for _, algo := range []hashutil.HashAlgo{hashutil.HashAlgoSHA256, hashutil.HashAlgoBLAKE3} {
		t.Run(string(algo), func(t *testing.T) {
			h, err := hashutil.NewHasher(algo)
			require.NoError(t, err)

			_, err = io.Copy(h, strings.NewReader(payload))
			require.NoError(t, err)

			expected, err := hashutil.HashBytes([]byte(payload), algo)
			require.NoError(t, err)
			assert.Equal(t, expected, hashutil.Sum(h))
		})
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, hashutil.IsSupported(hashutil.HashAlgoSHA256))
	assert.True(t, hashutil.IsSupported(hashutil.HashAlgoBLAKE3))
	assert.False(t, hashutil.IsSupported("md5"))
	assert.False(t, hashutil.IsSupported(""))
}
