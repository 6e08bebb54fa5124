package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQdrantEndpoint(t *testing.T) {
	cases := []struct {
		raw    string
		host   string
		port   int
		useTLS bool
	}{
		{"http://localhost:6334", "localhost", 6334, false},
		{"https://qdrant.example.com", "qdrant.example.com", 6334, true},
		{"https://qdrant.example.com:7000", "qdrant.example.com", 7000, true},
		{"localhost:6334", "localhost", 6334, false},
		{"qdrant.internal:7000", "qdrant.internal", 7000, false},
		{"localhost", "localhost", 6334, false},
	}

	for _, tc := range cases {
		host, port, useTLS, err := parseQdrantEndpoint(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.host, host, tc.raw)
		assert.Equal(t, tc.port, port, tc.raw)
		assert.Equal(t, tc.useTLS, useTLS, tc.raw)
	}
}

func TestParseQdrantEndpoint_BadPort(t *testing.T) {
	_, _, _, err := parseQdrantEndpoint("http://localhost:notaport")
	assert.Error(t, err)
}
