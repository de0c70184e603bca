package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawMaterialRequestTransitions(t *testing.T) {
	cases := []struct {
		from, to RawMaterialRequestStatus
		ok       bool
	}{
		{RawMaterialRequestStatusPending, RawMaterialRequestStatusApproved, true},
		{RawMaterialRequestStatusPending, RawMaterialRequestStatusRejected, true},
		{RawMaterialRequestStatusApproved, RawMaterialRequestStatusSupplied, true},
		{RawMaterialRequestStatusSupplied, RawMaterialRequestStatusAccepted, true},
		{RawMaterialRequestStatusSupplied, RawMaterialRequestStatusRejectedByInventory, true},
		{RawMaterialRequestStatusPending, RawMaterialRequestStatusSupplied, false},
		{RawMaterialRequestStatusRejected, RawMaterialRequestStatusApproved, false},
		{RawMaterialRequestStatusAccepted, RawMaterialRequestStatusSupplied, false},
		{RawMaterialRequestStatusApproved, RawMaterialRequestStatusAccepted, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestProductionRequestChainIsLinear(t *testing.T) {
	chain := []ProductionRequestStatus{
		ProductionRequestStatusPending,
		ProductionRequestStatusDoorRequested,
		ProductionRequestStatusDoorApproved,
		ProductionRequestStatusDoorAssigned,
		ProductionRequestStatusInProduction,
		ProductionRequestStatusCompleted,
		ProductionRequestStatusApproved,
	}
	for i := range chain {
		for j := range chain {
			assert.Equalf(t, j == i+1, chain[i].CanTransitionTo(chain[j]), "%s -> %s", chain[i], chain[j])
		}
	}
}

func TestAssignedTaskAndReleaseTransitions(t *testing.T) {
	assert.True(t, AssignedTaskStatusAssigned.CanTransitionTo(AssignedTaskStatusInProduction))
	assert.False(t, AssignedTaskStatusAssigned.CanTransitionTo(AssignedTaskStatusCompleted))
	assert.False(t, AssignedTaskStatusApproved.CanTransitionTo(AssignedTaskStatusAssigned))

	assert.True(t, MaterialReleaseStatusPending.CanTransitionTo(MaterialReleaseStatusReleased))
	assert.True(t, MaterialReleaseStatusReleased.CanTransitionTo(MaterialReleaseStatusRejected))
	assert.False(t, MaterialReleaseStatusPending.CanTransitionTo(MaterialReleaseStatusApproved))
	assert.False(t, MaterialReleaseStatusApproved.CanTransitionTo(MaterialReleaseStatusReleased))
}

func TestOrderPaymentAndDispatchTransitions(t *testing.T) {
	assert.True(t, OrderStatusPlaced.CanTransitionTo(OrderStatusReleased))
	assert.True(t, OrderStatusReleased.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusReleased.CanTransitionTo(OrderStatusReleased))
	assert.False(t, OrderStatusPlaced.CanTransitionTo(OrderStatusShipped))

	assert.True(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusConfirmed))
	assert.False(t, PaymentStatusConfirmed.CanTransitionTo(PaymentStatusPaid))

	assert.True(t, DispatchStatusAssigned.CanTransitionTo(DispatchStatusDelivered))
	assert.False(t, DispatchStatusDelivered.CanTransitionTo(DispatchStatusAssigned))
}

func TestToolRequestTransitions(t *testing.T) {
	assert.True(t, ToolRequestStatusPending.CanTransitionTo(ToolRequestStatusApproved))
	assert.True(t, ToolRequestStatusPending.CanTransitionTo(ToolRequestStatusRejected))
	assert.True(t, ToolRequestStatusApproved.CanTransitionTo(ToolRequestStatusReturned))
	assert.False(t, ToolRequestStatusRejected.CanTransitionTo(ToolRequestStatusApproved))
	assert.False(t, ToolRequestStatusPending.CanTransitionTo(ToolRequestStatusReturned))
}

func TestServiceStatusChain(t *testing.T) {
	for i := 0; i+1 < len(serviceStatusChain); i++ {
		from, to := serviceStatusChain[i], serviceStatusChain[i+1]
		assert.Truef(t, from.CanTransitionTo(to), "%s -> %s", from, to)
		assert.Equal(t, i, from.Rank())
	}
	assert.False(t, ServiceStatusRequested.CanTransitionTo(ServiceStatusAllocatedToSupervisor))
	assert.False(t, ServiceStatusCompleted.CanTransitionTo(ServiceStatusRequested))

	assert.True(t, ServiceStatusInProgress.HasReached(ServiceStatusAllocatedToSupervisor))
	assert.False(t, ServiceStatusPaymentConfirmed.HasReached(ServiceStatusAllocatedToSupervisor))
	assert.False(t, ServiceStatus("unknown").HasReached(ServiceStatusRequested))
	assert.Equal(t, -1, ServiceStatus("unknown").Rank())
}

func TestParseStatuses(t *testing.T) {
	s, err := ParseRawMaterialRequestStatus(" rejected-by-inventory ")
	require.NoError(t, err)
	assert.Equal(t, RawMaterialRequestStatusRejectedByInventory, s)

	_, err = ParseRawMaterialRequestStatus("paid")
	assert.Error(t, err)

	o, err := ParseOrderStatus("delivered")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, o)

	_, err = ParseProductionRequestStatus("done")
	assert.Error(t, err)

	svc, err := ParseServiceStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, ServiceStatusCompleted, svc)
}

func TestParseEmployeeRole(t *testing.T) {
	r, err := ParseEmployeeRole("inventory manager")
	require.NoError(t, err)
	assert.Equal(t, EmployeeRoleInventoryManager, r)

	_, err = ParseEmployeeRole("Janitor")
	assert.Error(t, err)
}

func TestParseDecision(t *testing.T) {
	for _, raw := range []string{"approve", "Approved", " accept ", "ACCEPTED"} {
		d, err := ParseDecision(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, DecisionApprove, d, raw)
	}
	for _, raw := range []string{"reject", "Rejected"} {
		d, err := ParseDecision(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, DecisionReject, d, raw)
	}
	_, err := ParseDecision("maybe")
	assert.Error(t, err)
}
