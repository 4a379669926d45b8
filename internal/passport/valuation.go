// internal/passport/valuation.go
package passport

// Per-type base rates in currency units. Types outside the table fall back
// to fallbackRate rather than failing.
var marketRates = map[DeviceType]float64{
	DeviceSmartphone: 15,
	DeviceLaptop:     40,
	DeviceTablet:     25,
	DeviceAppliance:  10,
	DeviceAccessory:  2,
}

const (
	fallbackRate        = 5.0
	refurbishMultiplier = 2.5

	// An unreported device age counts as this many years, which always
	// fails the refurbishment age test.
	defaultAgeYears = 10
	maxRefurbishAge = 4
)

// Classify maps the submitted device attributes to a classification. A
// device is worth refurbishing only if it powers on, is in Like New or Good
// condition and is strictly younger than maxRefurbishAge years. An age of
// zero means the citizen left the field blank and is treated as unknown.
func Classify(powersOn bool, condition Condition, ageYears int) Classification {
	if ageYears <= 0 {
		ageYears = defaultAgeYears
	}
	if powersOn && (condition == ConditionLikeNew || condition == ConditionGood) && ageYears < maxRefurbishAge {
		return ClassificationRefurbish
	}
	return ClassificationRecycle
}

// EstimateValue computes the monetary estimate for a device type under a
// classification. The result is never negative.
func EstimateValue(deviceType DeviceType, classification Classification) float64 {
	base, ok := marketRates[deviceType]
	if !ok {
		base = fallbackRate
	}
	value := base
	if classification == ClassificationRefurbish {
		value = base * refurbishMultiplier
	}
	if value < 0 {
		return 0
	}
	return value
}
