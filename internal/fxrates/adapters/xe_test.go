package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

func TestXeTransformSpansSplitAcrossElements(t *testing.T) {
	// xe.com renders the numeric result split across multiple <span>
	// elements; Transform must merge them before extracting the number.
	html := `
<html><body>
<div data-testid="conversion"><p><span>0.</span><span>9123</span> EUR</p></div>
</body></html>`

	adapter, err := NewXe("usd", "eur", "", "")
	require.NoError(t, err)

	rates, err := adapter.Transform([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"EUR": 0.9123}, rates)
}

func TestXeTransformFallsBackToPlainText(t *testing.T) {
	html := `
<html><body>
<div data-testid="conversion"><p>Converted amount: 0.9123 EUR</p></div>
</body></html>`

	adapter, err := NewXe("usd", "eur", "", "")
	require.NoError(t, err)

	rates, err := adapter.Transform([]byte(html))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"EUR": 0.9123}, rates)
}

func TestXeTransformMissingPanel(t *testing.T) {
	adapter, err := NewXe("usd", "eur", "", "")
	require.NoError(t, err)

	_, err = adapter.Transform([]byte(`<html><body>no panel</body></html>`))
	assert.ErrorIs(t, err, fxrates.ErrEmptyResult)
}
