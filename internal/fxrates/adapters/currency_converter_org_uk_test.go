package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

func TestCurrencyConverterOrgUKTransform(t *testing.T) {
	html := `
<html><body>
<table class="currencies"><tr><td>ignored first table</td></tr></table>
<table class="currencies">
<tr><td>header</td><td>header</td></tr>
<tr><td>1</td><td>1 Dollar = 0.9123 Euro</td></tr>
<tr><td>2</td><td>1 Dollar = 0.7890 Pound</td></tr>
</table>
</body></html>`

	adapter, err := NewCurrencyConverterOrgUK("usd", "", "", "US Dollars")
	require.NoError(t, err)

	rates, err := adapter.Transform([]byte(html))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"EURO":  0.9123,
		"POUND": 0.7890,
	}, rates)
}

func TestCurrencyConverterOrgUKTransformNeedsSecondTable(t *testing.T) {
	html := `<html><body><table class="currencies"><tr><td>only one table</td></tr></table></body></html>`

	adapter, err := NewCurrencyConverterOrgUK("usd", "", "", "US Dollars")
	require.NoError(t, err)

	_, err = adapter.Transform([]byte(html))
	assert.ErrorIs(t, err, fxrates.ErrEmptyResult)
}
