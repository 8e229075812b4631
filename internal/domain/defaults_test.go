package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderCodePrefix(t *testing.T) {
	assert.Equal(t, "ORD", OrderCodePrefix(""))
	assert.Equal(t, "ORD", OrderCodePrefix("   "))
	assert.Equal(t, "SHIP", OrderCodePrefix(" SHIP "))
}

func TestDeclaredOrSummedHours(t *testing.T) {
	declared := 0
	assert.Equal(t, 0, DeclaredOrSummedHours(&declared, 12))
	assert.Equal(t, 12, DeclaredOrSummedHours(nil, 12))
}
