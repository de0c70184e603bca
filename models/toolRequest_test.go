package models

import (
	"testing"

	"github.com/evanbosire/Eurodoor-Backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestLines() []*ToolRequestLine {
	return []*ToolRequestLine{
		{ID: 1, ToolId: 7, QuantityRequested: 2, ReturnStatus: ToolReturnStatusNotReturned},
		{ID: 2, ToolId: 9, QuantityRequested: 1, ReturnStatus: ToolReturnStatusNotReturned},
	}
}

func TestSumByToolFoldsDuplicates(t *testing.T) {
	totals, order, err := sumByTool([]ToolQuantityInput{
		{ToolId: 9, Quantity: 1},
		{ToolId: 7, Quantity: 1},
		{ToolId: 9, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 7}, order)
	assert.Equal(t, map[int]int{9: 3, 7: 1}, totals)

	_, _, err = sumByTool([]ToolQuantityInput{{ToolId: 7, Quantity: -1}})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestApplyApprovals(t *testing.T) {
	lines := requestLines()
	require.NoError(t, applyApprovals(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 2}, {ToolId: 9, Quantity: 0}}))
	assert.Equal(t, 2, lines[0].QuantityApproved)
	assert.Equal(t, 0, lines[1].QuantityApproved)
}

func TestApplyApprovalsRejectsOverRequested(t *testing.T) {
	lines := requestLines()
	err := applyApprovals(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 3}})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	err = applyApprovals(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 2}, {ToolId: 7, Quantity: 1}})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	err = applyApprovals(lines, []ToolQuantityInput{{ToolId: 42, Quantity: 1}})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestApplyReturnsPartialThenFull(t *testing.T) {
	lines := requestLines()
	lines[0].QuantityApproved = 2
	lines[1].QuantityApproved = 1

	done, err := applyReturns(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 1}})
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, ToolReturnStatusPartiallyReturned, lines[0].ReturnStatus)
	assert.Equal(t, ToolReturnStatusNotReturned, lines[1].ReturnStatus)

	done, err = applyReturns(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 1}, {ToolId: 9, Quantity: 1}})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, ToolReturnStatusFullyReturned, lines[0].ReturnStatus)
	assert.Equal(t, ToolReturnStatusFullyReturned, lines[1].ReturnStatus)
}

func TestApplyReturnsCannotExceedApproved(t *testing.T) {
	lines := requestLines()
	lines[0].QuantityApproved = 1
	lines[0].QuantityReturned = 1

	_, err := applyReturns(lines, []ToolQuantityInput{{ToolId: 7, Quantity: 1}})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	assert.Equal(t, 1, lines[0].QuantityReturned)
}

func TestLineReturnStatusAndAllLinesReturned(t *testing.T) {
	assert.Equal(t, ToolReturnStatusPartiallyReturned, lineReturnStatus(1, 3))
	assert.Equal(t, ToolReturnStatusFullyReturned, lineReturnStatus(3, 3))
	assert.Equal(t, ToolReturnStatusFullyReturned, lineReturnStatus(0, 0))

	// A line approved at zero counts as returned.
	lines := []*ToolRequestLine{
		{ToolId: 1, QuantityApproved: 0},
		{ToolId: 2, QuantityApproved: 2, QuantityReturned: 2},
	}
	assert.True(t, allLinesReturned(lines))
	lines[1].QuantityReturned = 1
	assert.False(t, allLinesReturned(lines))
}
