package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "ana gomez", Fold("  Ana   Gómez "))
	assert.Equal(t, "nunez", Fold("NÚÑEZ"))
	assert.Equal(t, "", Fold("   "))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "jose perez jose@x.com", Key("José", "", "Pérez", "JOSE@x.com"))
}
