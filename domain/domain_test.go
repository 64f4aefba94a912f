package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain domain", url: "https://example.com/y", want: "Example"},
		{name: "subdomain stripped", url: "https://mail.example.com/x", want: "Example"},
		{name: "deep subdomain", url: "https://a.b.mail.example.com/", want: "Example"},
		{name: "generic sld co.uk", url: "https://shop.example.co.uk", want: "Example"},
		{name: "generic sld com.au", url: "https://example.com.au/cart", want: "Example"},
		{name: "generic sld gov.uk", url: "https://www.service.gov.uk", want: "Service"},
		{name: "bare generic pair", url: "https://example.org", want: "Example"},
		{name: "ipv4 passthrough", url: "http://192.168.1.1:8080/", want: "192.168.1.1"},
		{name: "ipv4 no port", url: "http://10.0.0.1/", want: "10.0.0.1"},
		{name: "internal scheme", url: "chrome://settings/passwords", want: "Chrome"},
		{name: "internal new tab", url: "chrome://newtab/", want: "Chrome"},
		{name: "single label host", url: "http://localhost:3000/", want: "Localhost"},
		{name: "query and fragment ignored", url: "https://example.com/a?b=c#d", want: "Example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Label(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLabel_Determinism(t *testing.T) {
	a, err := Label("https://mail.example.com/x")
	require.NoError(t, err)
	b, err := Label("https://example.com/y")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "Example", a)
}

func TestLabel_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "unparseable", url: "http://exa mple.com/%zz"},
		{name: "no hostname", url: "not-a-url"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Label(tt.url)
			assert.Error(t, err)
		})
	}
}

func TestIsDottedQuad(t *testing.T) {
	assert.True(t, isDottedQuad("192.168.1.1"))
	assert.True(t, isDottedQuad("999.999.999.999")) // shape-based, not range-checked
	assert.False(t, isDottedQuad("192.168.1"))
	assert.False(t, isDottedQuad("192.168.1.1.1"))
	assert.False(t, isDottedQuad("192.168.1.x"))
	assert.False(t, isDottedQuad("example.com"))
	assert.False(t, isDottedQuad("1..2.3"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Example", capitalize("example"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "X", capitalize("x"))
	assert.Equal(t, "Über", capitalize("über"))
}
