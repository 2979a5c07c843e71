package upi

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPaymentURIFormatsAmountAndDefaults(t *testing.T) {
	uri, err := BuildPaymentURI("shop@upi", "Campus Store", decimal.RequireFromString("1180"), "ORD-42")
	require.NoError(t, err)
	assert.Equal(t, "upi://pay?pa=shop%40upi&pn=Campus%20Store&am=1180.00&cu=INR&tn=ORD-42&mc=0000", uri)

	uri, err = BuildPaymentURI("shop@upi", "Store", decimal.RequireFromString("99.5"), "")
	require.NoError(t, err)
	assert.Contains(t, uri, "am=99.50")
	assert.Contains(t, uri, "tn=Payment")
}

func TestBuildPaymentURIRejectsBadInput(t *testing.T) {
	_, err := BuildPaymentURI("", "Store", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, ErrMissingPayee)

	_, err = BuildPaymentURI("a@upi", "Store", decimal.Zero, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestEncodeComponentMatchesJavaScript(t *testing.T) {
	cases := map[string]string{
		"a b":          "a%20b",
		"it's (fine)!": "it's%20(fine)!",
		"x+y=z&w":      "x%2By%3Dz%26w",
		"~_.-*":        "~_.-*",
		"₹":            "%E2%82%B9",
	}
	for in, want := range cases {
		assert.Equal(t, want, encodeComponent(in), in)
	}
}

func TestParsePaymentURIRoundTrip(t *testing.T) {
	uri, err := BuildPaymentURI("shop+1@upi", "Rahul & Sons", decimal.RequireFromString("250.755"), "ORD 7")
	require.NoError(t, err)

	req, err := ParsePaymentURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "shop+1@upi", req.PayeeID)
	assert.Equal(t, "Rahul & Sons", req.PayeeName)
	assert.Equal(t, "ORD 7", req.Note)
	assert.Equal(t, "INR", req.Currency)
	assert.Equal(t, "0000", req.MerchantCode)
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("250.76")), req.Amount.String())

	_, err = ParsePaymentURI("https://pay?pa=x")
	assert.ErrorIs(t, err, ErrNotUPI)
}

func TestRenderQRCode(t *testing.T) {
	uri, err := BuildPaymentURI("shop@upi", "Store", decimal.NewFromInt(500), "ORD-1")
	require.NoError(t, err)

	data, err := RenderQRCode(uri)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, QRSize, img.Bounds().Dx())
	assert.Equal(t, QRSize, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b, "quiet zone corner must be white")

	assert.Contains(t, DataURL(data)[:22], "data:image/png;base64,")
}
