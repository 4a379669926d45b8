package passport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		powersOn  bool
		condition Condition
		ageYears  int
		want      Classification
	}{
		{"young good device that powers on", true, ConditionGood, 2, ClassificationRefurbish},
		{"like new under age limit", true, ConditionLikeNew, 3, ClassificationRefurbish},
		{"fair condition fails", true, ConditionFair, 1, ClassificationRecycle},
		{"dead device fails regardless of condition", false, ConditionLikeNew, 0, ClassificationRecycle},
		{"age at the limit fails", true, ConditionGood, 4, ClassificationRecycle},
		{"unreported age counts as old", true, ConditionGood, 0, ClassificationRecycle},
		{"broken device", true, ConditionBroken, 1, ClassificationRecycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.powersOn, tt.condition, tt.ageYears))
		})
	}
}

func TestClassifyRefurbishImpliesAllCriteria(t *testing.T) {
	conditions := []Condition{ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor, ConditionBroken}

	rapid.Check(t, func(t *rapid.T) {
		powersOn := rapid.Bool().Draw(t, "powersOn")
		condition := rapid.SampledFrom(conditions).Draw(t, "condition")
		ageYears := rapid.IntRange(0, 50).Draw(t, "ageYears")

		got := Classify(powersOn, condition, ageYears)
		if got == ClassificationRefurbish {
			assert.True(t, powersOn)
			assert.Contains(t, []Condition{ConditionLikeNew, ConditionGood}, condition)
			assert.Greater(t, ageYears, 0)
			assert.Less(t, ageYears, maxRefurbishAge)
		}

		// Pure function: same inputs, same answer.
		assert.Equal(t, got, Classify(powersOn, condition, ageYears))
	})
}

func TestEstimateValue(t *testing.T) {
	assert.Equal(t, 40.0, EstimateValue(DeviceLaptop, ClassificationRecycle))
	assert.Equal(t, 100.0, EstimateValue(DeviceLaptop, ClassificationRefurbish))
	assert.Equal(t, 2.0, EstimateValue(DeviceAccessory, ClassificationRecycle))
	assert.Greater(t,
		EstimateValue(DeviceLaptop, ClassificationRecycle),
		EstimateValue(DeviceAccessory, ClassificationRecycle),
	)

	// Unknown types fall back to the minimum base rate instead of failing.
	assert.Equal(t, fallbackRate, EstimateValue(DeviceType("Toaster"), ClassificationRecycle))
	assert.Equal(t, fallbackRate*refurbishMultiplier, EstimateValue(DeviceType("Toaster"), ClassificationRefurbish))
}

func TestEstimateValueNeverNegative(t *testing.T) {
	classifications := []Classification{ClassificationRecycle, ClassificationRefurbish, ClassificationPending, Classification("BOGUS")}

	rapid.Check(t, func(t *rapid.T) {
		deviceType := DeviceType(rapid.String().Draw(t, "deviceType"))
		classification := rapid.SampledFrom(classifications).Draw(t, "classification")

		assert.GreaterOrEqual(t, EstimateValue(deviceType, classification), 0.0)
	})
}
