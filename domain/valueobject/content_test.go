package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
)

func Test_ParseLink(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		want        string
		wantErr     bool
	}{
		{description: "host only", input: "https://example.com", want: "https://example.com"},
		{description: "path and query", input: " https://Example.com/docs/a%20b?page=2&q=x ", want: "https://example.com/docs/a%20b?page=2&q=x"},
		{description: "fragment is dropped", input: "http://example.com/faq#top", want: "http://example.com/faq"},
		{description: "port is kept", input: "http://localhost:8080/health", want: "http://localhost:8080/health"},
		{description: "empty", input: "", wantErr: true},
		{description: "relative", input: "/docs", wantErr: true},
		{description: "no host", input: "mailto:jane@example.com", wantErr: true},
		{description: "space in host", input: "http://exa mple.com", wantErr: true},
		{description: "port only", input: "http://:8080", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			link, err := valueobject.ParseLink(tc.input)

			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, link.String())
		})
	}
}

func Test_Link_Parts(t *testing.T) {
	link, err := valueobject.ParseLink("https://example.com:8443/search?q=ddd")
	require.NoError(t, err)

	assert.Equal(t, "https", link.Scheme())
	assert.Equal(t, "example.com:8443", link.Host())
	assert.Equal(t, "/search", link.Path())
	assert.Equal(t, "q=ddd", link.Query())
	assert.True(t, link.IsSecure())

	text, err := link.MarshalText()
	require.NoError(t, err)

	var decoded valueobject.Link
	require.NoError(t, decoded.UnmarshalText(text))
	assert.True(t, link.Equals(decoded))
	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
}

func Test_ParseColor(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		want        string
		wantErr     bool
	}{
		{description: "named", input: "red", want: "red"},
		{description: "named is normalised", input: "  Steel ", want: "steel"},
		{description: "long hex", input: "#1E90FF", want: "#1e90ff"},
		{description: "short hex", input: "#fff", want: "#fff"},
		{description: "unknown name", input: "turquoise", wantErr: true},
		{description: "hex without hash", input: "1e90ff", wantErr: true},
		{description: "hex of wrong length", input: "#1e90f", wantErr: true},
		{description: "not hex", input: "#zzzzzz", wantErr: true},
		{description: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			color, err := valueobject.ParseColor(tc.input)

			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, color.String())
		})
	}
}

func Test_Color_Kinds(t *testing.T) {
	named, err := valueobject.ParseColor("blue")
	require.NoError(t, err)
	hex, err := valueobject.ParseColor("#0000ff")
	require.NoError(t, err)

	assert.False(t, named.IsHex())
	assert.True(t, hex.IsHex())
	assert.False(t, named.Equals(hex))
	assert.Len(t, valueobject.NamedColors(), 14)
	assert.Contains(t, valueobject.NamedColors(), "magenta")
}
