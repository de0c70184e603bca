package models

import (
	"testing"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lots(quantities ...int64) []RawMaterialStock {
	out := make([]RawMaterialStock, 0, len(quantities))
	for i, q := range quantities {
		out = append(out, RawMaterialStock{ID: i + 1, MaterialName: "steel sheet", Quantity: decimal.NewFromInt(q)})
	}
	return out
}

func TestPlanLotConsumptionSingleLot(t *testing.T) {
	draws, err := planLotConsumption(lots(100), decimal.NewFromInt(30))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, 1, draws[0].LotId)
	assert.True(t, draws[0].Take.Equal(decimal.NewFromInt(30)))
	assert.True(t, draws[0].Remaining.Equal(decimal.NewFromInt(70)))
	assert.False(t, draws[0].Exhausts)
}

func TestPlanLotConsumptionSpansLotsInOrder(t *testing.T) {
	draws, err := planLotConsumption(lots(10, 20, 30), decimal.NewFromInt(25))
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, 1, draws[0].LotId)
	assert.True(t, draws[0].Exhausts)
	assert.True(t, draws[0].Take.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, 2, draws[1].LotId)
	assert.False(t, draws[1].Exhausts)
	assert.True(t, draws[1].Remaining.Equal(decimal.NewFromInt(5)))
}

func TestPlanLotConsumptionExactTotalExhaustsEverything(t *testing.T) {
	draws, err := planLotConsumption(lots(10, 20), decimal.NewFromInt(30))
	require.NoError(t, err)
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.True(t, d.Exhausts)
		assert.True(t, d.Remaining.IsZero())
	}
}

func TestPlanLotConsumptionSkipsEmptyLots(t *testing.T) {
	draws, err := planLotConsumption(lots(0, 5), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, 2, draws[0].LotId)
}

func TestPlanLotConsumptionInsufficient(t *testing.T) {
	_, err := planLotConsumption(lots(10, 20), decimal.NewFromInt(31))
	require.ErrorIs(t, err, utils.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "steel sheet")
	assert.Contains(t, err.Error(), "Available: 30")
}

func TestPlanLotConsumptionFractional(t *testing.T) {
	draws, err := planLotConsumption(lots(2), decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Remaining.Equal(decimal.RequireFromString("0.75")))
}

func TestSurvivingLotIdSkipsExhaustedLots(t *testing.T) {
	stock := lots(10, 20, 30)

	draws, err := planLotConsumption(stock, decimal.NewFromInt(25))
	require.NoError(t, err)
	assert.Equal(t, 2, survivingLotId(stock, draws))

	draws, err = planLotConsumption(stock, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, 3, survivingLotId(stock, draws))

	draws, err = planLotConsumption(stock, decimal.NewFromInt(60))
	require.NoError(t, err)
	assert.Zero(t, survivingLotId(stock, draws))

	withEmpty := lots(0, 5)
	draws, err = planLotConsumption(withEmpty, decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, 2, survivingLotId(withEmpty, draws))
}
