package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	FixedBtc = "FixedBtc"
	FixedUsd = "FixedUsd"
)

var supportedDenominationAlgorithms = supportedType{
	FixedBtc: {},
	FixedUsd: {},
}

// Config is the coordinator's read-only parameter bundle. It is built
// once by Load and never mutated afterwards; every component that
// needs it is handed the same *Config.
type Config struct {
	LogLevel int

	InputRegistrationPhaseTimeout      time.Duration
	ConnectionConfirmationPhaseTimeout time.Duration
	OutputRegistrationPhaseTimeout     time.Duration
	SigningPhaseTimeout                time.Duration

	MinimumAnonymitySet int
	MaximumAnonymitySet int

	AverageTimeToSpendInInputRegistration time.Duration

	DenominationAlgorithm string
	DenominationBtc       btcutil.Amount
	DenominationUsd       float64

	FallbackSatPerByte int64

	BitcoinNodeRPCHost string
	BitcoinNodeRPCUser string
	BitcoinNodeRPCPass string

	ExchangeRateURL string
}

func (c *Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(b)
}

var (
	logLevel = "LOG_LEVEL"

	inputRegistrationPhaseTimeoutSeconds      = "INPUT_REGISTRATION_PHASE_TIMEOUT_SECONDS"
	connectionConfirmationPhaseTimeoutSeconds = "CONNECTION_CONFIRMATION_PHASE_TIMEOUT_SECONDS"
	outputRegistrationPhaseTimeoutSeconds     = "OUTPUT_REGISTRATION_PHASE_TIMEOUT_SECONDS"
	signingPhaseTimeoutSeconds                = "SIGNING_PHASE_TIMEOUT_SECONDS"

	minimumAnonymitySet = "MINIMUM_ANONYMITY_SET"
	maximumAnonymitySet = "MAXIMUM_ANONYMITY_SET"

	averageTimeToSpendInInputRegistrationSeconds = "AVERAGE_TIME_TO_SPEND_IN_INPUT_REGISTRATION_SECONDS"

	denominationAlgorithm = "DENOMINATION_ALGORITHM"
	denominationBtc       = "DENOMINATION_BTC"
	denominationUsd       = "DENOMINATION_USD"

	fallbackSatPerByte = "FALLBACK_SAT_PER_BYTE"

	bitcoinNodeRPCHost = "BITCOIN_NODE_RPC_HOST"
	bitcoinNodeRPCUser = "BITCOIN_NODE_RPC_USER"
	bitcoinNodeRPCPass = "BITCOIN_NODE_RPC_PASS"

	exchangeRateURL = "EXCHANGE_RATE_URL"

	defaultLogLevel                                  = 4
	defaultInputRegistrationPhaseTimeoutSeconds      = 60
	defaultConnectionConfirmationPhaseTimeoutSeconds = 30
	defaultOutputRegistrationPhaseTimeoutSeconds     = 30
	defaultSigningPhaseTimeoutSeconds                = 60
	defaultMinimumAnonymitySet                       = 5
	defaultMaximumAnonymitySet                       = 30
	defaultAverageTimeToSpendInInputRegistrationSecs = 120
	defaultDenominationAlgorithm                     = FixedBtc
	defaultDenominationBtc                           = 0.01
	defaultFallbackSatPerByte                        = 2
)

// Load reads the Config surface from environment variables prefixed
// COORDINATOR_.
func Load() (*Config, error) {
	viper.SetEnvPrefix("COORDINATOR")
	viper.AutomaticEnv()

	viper.SetDefault(logLevel, defaultLogLevel)
	viper.SetDefault(inputRegistrationPhaseTimeoutSeconds, defaultInputRegistrationPhaseTimeoutSeconds)
	viper.SetDefault(connectionConfirmationPhaseTimeoutSeconds, defaultConnectionConfirmationPhaseTimeoutSeconds)
	viper.SetDefault(outputRegistrationPhaseTimeoutSeconds, defaultOutputRegistrationPhaseTimeoutSeconds)
	viper.SetDefault(signingPhaseTimeoutSeconds, defaultSigningPhaseTimeoutSeconds)
	viper.SetDefault(minimumAnonymitySet, defaultMinimumAnonymitySet)
	viper.SetDefault(maximumAnonymitySet, defaultMaximumAnonymitySet)
	viper.SetDefault(averageTimeToSpendInInputRegistrationSeconds, defaultAverageTimeToSpendInInputRegistrationSecs)
	viper.SetDefault(denominationAlgorithm, defaultDenominationAlgorithm)
	viper.SetDefault(denominationBtc, defaultDenominationBtc)
	viper.SetDefault(fallbackSatPerByte, defaultFallbackSatPerByte)

	denomBtc, err := btcutil.NewAmount(viper.GetFloat64(denominationBtc))
	if err != nil {
		return nil, fmt.Errorf("invalid denomination_btc: %s", err)
	}

	cfg := &Config{
		LogLevel: viper.GetInt(logLevel),

		InputRegistrationPhaseTimeout:      time.Duration(viper.GetInt64(inputRegistrationPhaseTimeoutSeconds)) * time.Second,
		ConnectionConfirmationPhaseTimeout: time.Duration(viper.GetInt64(connectionConfirmationPhaseTimeoutSeconds)) * time.Second,
		OutputRegistrationPhaseTimeout:     time.Duration(viper.GetInt64(outputRegistrationPhaseTimeoutSeconds)) * time.Second,
		SigningPhaseTimeout:                time.Duration(viper.GetInt64(signingPhaseTimeoutSeconds)) * time.Second,

		MinimumAnonymitySet: viper.GetInt(minimumAnonymitySet),
		MaximumAnonymitySet: viper.GetInt(maximumAnonymitySet),

		AverageTimeToSpendInInputRegistration: time.Duration(viper.GetInt64(averageTimeToSpendInInputRegistrationSeconds)) * time.Second,

		DenominationAlgorithm: viper.GetString(denominationAlgorithm),
		DenominationBtc:       denomBtc,
		DenominationUsd:       viper.GetFloat64(denominationUsd),

		FallbackSatPerByte: viper.GetInt64(fallbackSatPerByte),

		BitcoinNodeRPCHost: viper.GetString(bitcoinNodeRPCHost),
		BitcoinNodeRPCUser: viper.GetString(bitcoinNodeRPCUser),
		BitcoinNodeRPCPass: viper.GetString(bitcoinNodeRPCPass),

		ExchangeRateURL: viper.GetString(exchangeRateURL),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the scheduler could never run with.
func (c *Config) Validate() error {
	if c.MinimumAnonymitySet <= 0 {
		return fmt.Errorf("minimum_anonymity_set must be positive")
	}
	if c.MinimumAnonymitySet > c.MaximumAnonymitySet {
		return fmt.Errorf("minimum_anonymity_set must be <= maximum_anonymity_set")
	}
	if !supportedDenominationAlgorithms.supports(c.DenominationAlgorithm) {
		return fmt.Errorf("denomination algorithm not supported, please select one of: %s", supportedDenominationAlgorithms)
	}
	if c.DenominationAlgorithm == FixedUsd && c.DenominationUsd <= 0 {
		return fmt.Errorf("denomination_usd must be positive when denomination_algorithm is FixedUsd")
	}
	for name, d := range map[string]time.Duration{
		"input_registration_phase_timeout_seconds":      c.InputRegistrationPhaseTimeout,
		"connection_confirmation_phase_timeout_seconds": c.ConnectionConfirmationPhaseTimeout,
		"output_registration_phase_timeout_seconds":     c.OutputRegistrationPhaseTimeout,
		"signing_phase_timeout_seconds":                 c.SigningPhaseTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.FallbackSatPerByte <= 0 {
		return fmt.Errorf("fallback_sat_per_byte must be positive")
	}
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
