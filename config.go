package ledgerrecon

import (
	"os"

	"github.com/shopspring/decimal"
)

// ApplyEnvOverrides lets a host override the anomaly-detection
// tolerances and thresholds via environment variables (typically
// populated from a .env file by the CLI entry point), without
// requiring the host to hand-edit a persisted config document. Unset
// variables leave cfg's field untouched; unparsable values are
// skipped rather than rejected, since this is a convenience layer over
// already-validated defaults, not a strict input boundary.
func ApplyEnvOverrides(cfg *AnomalyConfig) {
	if v, ok := envDecimal("AMOUNT_TOLERANCE_PERCENTAGE"); ok {
		cfg.AmountTolerancePercentage = v
	}
	if v, ok := envDecimal("AMOUNT_TOLERANCE_ABSOLUTE"); ok {
		cfg.AmountToleranceAbsolute = v
	}
	if v, ok := envDecimal("SEVERITY_THRESHOLD_CRITICAL"); ok {
		cfg.SeverityThresholdCritical = v
	}
	if v, ok := envDecimal("SEVERITY_THRESHOLD_HIGH"); ok {
		cfg.SeverityThresholdHigh = v
	}
	if v, ok := envDecimal("SEVERITY_THRESHOLD_MEDIUM"); ok {
		cfg.SeverityThresholdMedium = v
	}
	if v, ok := envBool("ALERT_ON_MISSING_TRANSACTIONS"); ok {
		cfg.AlertOnMissingTransactions = v
	}
	if v, ok := envBool("ALERT_ON_DUPLICATE_TRANSACTIONS"); ok {
		cfg.AlertOnDuplicateTransactions = v
	}
}

func envDecimal(key string) (decimal.Decimal, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func envBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "TRUE", "True":
		return true, true
	case "0", "false", "FALSE", "False":
		return false, true
	default:
		return false, false
	}
}
