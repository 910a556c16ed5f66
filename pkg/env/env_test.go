package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfiguredID(t *testing.T) {
	conf := &Config{BadgeID: "badge-42"}
	id, err := conf.ID()
	require.NoError(t, err)
	require.Equal(t, "badge-42", id)
}
