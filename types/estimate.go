package types

// Units for waste estimates.
const (
	UnitUSD    = "USD"
	UnitKgCO2e = "kgCO2e"
)

// Confidence qualifies a waste estimate.
type Confidence string

const (
	ConfidenceConfirmed Confidence = "confirmed"
	ConfidenceUnknown   Confidence = "unknown"
)

// WasteEstimate is an avoidable cost or carbon estimate for one resource.
// Amount is nil when the resource could not be evaluated; a nil amount is
// never the same as a confirmed zero.
type WasteEstimate struct {
	Amount     *float64   `json:"amount,omitempty"`
	Unit       string     `json:"unit"`
	Period     Window     `json:"period"`
	Confidence Confidence `json:"confidence"`
	Warning    string     `json:"warning,omitempty"`
}

// NewEstimate returns a confirmed estimate with the given amount.
func NewEstimate(amount float64, unit string, period Window) WasteEstimate {
	return WasteEstimate{
		Amount:     &amount,
		Unit:       unit,
		Period:     period,
		Confidence: ConfidenceConfirmed,
	}
}

// UnknownEstimate returns an estimate with no amount and an attached warning.
func UnknownEstimate(unit string, period Window, warning string) WasteEstimate {
	return WasteEstimate{
		Unit:       unit,
		Period:     period,
		Confidence: ConfidenceUnknown,
		Warning:    warning,
	}
}

// Known reports whether the estimate carries an amount.
func (e WasteEstimate) Known() bool {
	return e.Amount != nil
}
