package fxrates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdapterParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  AdapterParams
		wantErr bool
	}{
		{name: "valid base only", params: AdapterParams{Base: "USD"}},
		{name: "lowercase base rejected", params: AdapterParams{Base: "usd"}, wantErr: true},
		{name: "short base rejected", params: AdapterParams{Base: "US"}, wantErr: true},
		{name: "needs target but missing", params: AdapterParams{Base: "USD", NeedsTarget: true}, wantErr: true},
		{name: "needs target and present", params: AdapterParams{Base: "USD", Target: "EUR", NeedsTarget: true}},
		{name: "needs base name but missing", params: AdapterParams{Base: "USD", NeedsBaseName: true}, wantErr: true},
		{name: "needs base plural but missing", params: AdapterParams{Base: "USD", NeedsBasePlural: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAdapterParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "multi-pair", CapabilityMultiPair.String())
	assert.Equal(t, "single-pair", CapabilitySinglePair.String())
}

func TestErrorWrappingUnwraps(t *testing.T) {
	cause := errors.New("boom")

	netErr := &NetworkError{Source: "x", Err: cause}
	assert.ErrorIs(t, netErr, cause)

	parseErr := &ParseError{Source: "x", Err: cause}
	assert.ErrorIs(t, parseErr, cause)

	storageErr := &StorageError{Op: "write", Err: cause}
	assert.ErrorIs(t, storageErr, cause)

	unexpectedErr := &UnexpectedError{Context: "panic", Err: cause}
	assert.ErrorIs(t, unexpectedErr, cause)
}

func TestAllSourcesFailedMessage(t *testing.T) {
	err := &AllSourcesFailed{BaseCode: "USD", Errors: []error{errors.New("a"), errors.New("b")}}
	assert.Contains(t, err.Error(), "USD")
	assert.Contains(t, err.Error(), "2 errors")
}
