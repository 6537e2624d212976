package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAnonymityCalculatorSeedYieldsMinimum(t *testing.T) {
	calc := newAnonymityCalculator(2, 5, 120*time.Second)

	target := calc.Next(2, calc.seedInputRegistrationDuration())

	require.Equal(t, 2, target)
}

func TestAnonymityCalculatorSlowRegistrationDecreasesTarget(t *testing.T) {
	calc := newAnonymityCalculator(2, 5, 120*time.Second)

	target := calc.Next(5, 180*time.Second)

	require.Equal(t, 4, target)
}

func TestAnonymityCalculatorFastRegistrationIncreasesTarget(t *testing.T) {
	calc := newAnonymityCalculator(2, 5, 120*time.Second)

	target := calc.Next(3, 60*time.Second)

	require.Equal(t, 4, target)
}

func TestAnonymityCalculatorClampsToBounds(t *testing.T) {
	calc := newAnonymityCalculator(2, 5, 120*time.Second)

	require.Equal(t, 2, calc.Next(2, 200*time.Second))
	require.Equal(t, 5, calc.Next(5, 10*time.Second))
}
