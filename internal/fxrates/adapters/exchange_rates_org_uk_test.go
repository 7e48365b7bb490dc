package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

func TestExchangeRatesOrgUKTransform(t *testing.T) {
	html := `
<html><body>
<div class="mobilescrollbars">
<table class="currencypage-mini">
<tr class="colone"><td>1</td><td>2</td><td>3</td><td><a>EUR</a></td><td>0.9123</td></tr>
<tr class="coltwo"><td>1</td><td>2</td><td>3</td><td><a>GBP</a></td><td>0.7890</td></tr>
</table>
</div>
</body></html>`

	adapter, err := NewExchangeRatesOrgUK("usd", "", "US Dollar", "")
	require.NoError(t, err)

	rates, err := adapter.Transform([]byte(html))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"EUR": 0.9123,
		"GBP": 0.7890,
	}, rates)
}

func TestExchangeRatesOrgUKTransformSkipsShortRows(t *testing.T) {
	html := `
<html><body>
<div class="mobilescrollbars">
<table class="currencypage-mini">
<tr class="colone"><td>1</td><td>2</td></tr>
</table>
</div>
</body></html>`

	adapter, err := NewExchangeRatesOrgUK("usd", "", "US Dollar", "")
	require.NoError(t, err)

	_, err = adapter.Transform([]byte(html))
	assert.ErrorIs(t, err, fxrates.ErrEmptyResult)
}

func TestNewExchangeRatesOrgUKRequiresBaseName(t *testing.T) {
	_, err := NewExchangeRatesOrgUK("usd", "", "", "")
	assert.ErrorIs(t, err, fxrates.ErrInvalidAdapterParams)
}
