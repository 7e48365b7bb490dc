package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

func TestTradingEconomicsTransform(t *testing.T) {
	html := `
<html><body>
<table class="table-heatmap"><tbody>
<tr data-symbol="USDEUR:CUR"><td>USD/EUR</td><td>0.9123</td></tr>
<tr data-symbol="USDGBP:CUR"><td>USD/GBP</td><td>0.7890</td></tr>
<tr data-symbol="EURUSD:CUR"><td>EUR/USD</td><td>1.0961</td></tr>
</tbody></table>
</body></html>`

	adapter, err := NewTradingEconomics("usd", "", "", "")
	require.NoError(t, err)

	rates, err := adapter.Transform([]byte(html))
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{
		"EUR": 0.9123,
		"GBP": 0.7890,
	}, rates)
}

func TestTradingEconomicsTransformEmpty(t *testing.T) {
	adapter, err := NewTradingEconomics("usd", "", "", "")
	require.NoError(t, err)

	_, err = adapter.Transform([]byte(`<html><body><table class="table-heatmap"><tbody></tbody></table></body></html>`))
	assert.ErrorIs(t, err, fxrates.ErrEmptyResult)
}
