package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidKind(t *testing.T) {
	for _, k := range []string{KindShutdown, KindRestart, KindPause, KindResume, KindEmergencyStop} {
		assert.True(t, ValidKind(k), k)
	}
	assert.False(t, ValidKind("self_destruct"))
	assert.False(t, ValidKind(""))
	assert.False(t, ValidKind("Desligar"))
}
