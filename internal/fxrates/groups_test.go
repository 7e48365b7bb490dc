package fxrates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencyGroupsDoNotOverlap(t *testing.T) {
	primary := map[string]bool{}
	for _, code := range PrimaryGroup {
		primary[code] = true
	}

	for _, code := range SecondaryGroup {
		assert.False(t, primary[code], "currency %s appears in both groups", code)
	}
}

func TestCurrencyGroupsHaveNoDuplicates(t *testing.T) {
	for _, group := range [][]string{PrimaryGroup, SecondaryGroup} {
		seen := map[string]bool{}
		for _, code := range group {
			assert.False(t, seen[code], "duplicate currency code %s", code)
			seen[code] = true
		}
	}
}

func TestCurrencyGroupCodesAreThreeLetters(t *testing.T) {
	for _, group := range [][]string{PrimaryGroup, SecondaryGroup} {
		for _, code := range group {
			assert.Len(t, code, 3, "currency code %q must be 3 letters", code)
		}
	}
}
