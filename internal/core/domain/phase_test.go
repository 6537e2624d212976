package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/core/domain"
)

func TestPhaseNextIsCyclic(t *testing.T) {
	require.Equal(t, domain.ConnectionConfirmation, domain.InputRegistration.Next())
	require.Equal(t, domain.OutputRegistration, domain.ConnectionConfirmation.Next())
	require.Equal(t, domain.Signing, domain.OutputRegistration.Next())
	require.Equal(t, domain.InputRegistration, domain.Signing.Next())
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "InputRegistration", domain.InputRegistration.String())
	require.Equal(t, "Signing", domain.Signing.String())
}
