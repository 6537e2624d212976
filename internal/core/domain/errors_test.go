package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chaumian/coordinator/internal/core/domain"
)

func TestErrExternalUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.ErrExternalUnavailable{Source: "fee estimator", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "fee estimator")
}

func TestErrWrongPhaseMessage(t *testing.T) {
	err := domain.ErrWrongPhase{Want: domain.InputRegistration, Got: domain.Signing}
	require.Contains(t, err.Error(), "InputRegistration")
	require.Contains(t, err.Error(), "Signing")
}
