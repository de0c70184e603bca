package models

import (
	"errors"
	"strings"
)

// transitionTable lists, for each status, the statuses reachable in one step.
type transitionTable[S ~string] map[S][]S

func (t transitionTable[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t transitionTable[S]) known(s S) bool {
	if _, ok := t[s]; ok {
		return true
	}
	for _, nexts := range t {
		for _, n := range nexts {
			if n == s {
				return true
			}
		}
	}
	return false
}

func parseStatus[S ~string](t transitionTable[S], raw string, name string) (S, error) {
	s := S(strings.TrimSpace(raw))
	if !t.known(s) {
		return "", errors.New("invalid " + name + ": " + raw)
	}
	return s, nil
}

/* Stock */

type StockClass string

const (
	StockClassRawMaterial  StockClass = "raw_material"
	StockClassProductStore StockClass = "product_store"
	StockClassProduct      StockClass = "product"
	StockClassTool         StockClass = "tool"
)

type InventoryLogType string

const (
	InventoryLogTypeAdd     InventoryLogType = "add"
	InventoryLogTypeRelease InventoryLogType = "release"
)

/* Raw material procurement */

type RawMaterialRequestStatus string

const (
	RawMaterialRequestStatusPending             RawMaterialRequestStatus = "pending"
	RawMaterialRequestStatusApproved            RawMaterialRequestStatus = "approved"
	RawMaterialRequestStatusRejected            RawMaterialRequestStatus = "rejected"
	RawMaterialRequestStatusSupplied            RawMaterialRequestStatus = "supplied"
	RawMaterialRequestStatusAccepted            RawMaterialRequestStatus = "accepted"
	RawMaterialRequestStatusRejectedByInventory RawMaterialRequestStatus = "rejected-by-inventory"
)

var rawMaterialRequestTransitions = transitionTable[RawMaterialRequestStatus]{
	RawMaterialRequestStatusPending:  {RawMaterialRequestStatusApproved, RawMaterialRequestStatusRejected},
	RawMaterialRequestStatusApproved: {RawMaterialRequestStatusSupplied},
	RawMaterialRequestStatusSupplied: {RawMaterialRequestStatusAccepted, RawMaterialRequestStatusRejectedByInventory},
}

func (s RawMaterialRequestStatus) CanTransitionTo(next RawMaterialRequestStatus) bool {
	return rawMaterialRequestTransitions.allows(s, next)
}

func ParseRawMaterialRequestStatus(raw string) (RawMaterialRequestStatus, error) {
	return parseStatus(rawMaterialRequestTransitions, raw, "raw material request status")
}

type SupplierPaymentStatus string

const (
	SupplierPaymentStatusUnpaid SupplierPaymentStatus = "unpaid"
	SupplierPaymentStatusPaid   SupplierPaymentStatus = "paid"
)

/* Production */

type MaterialReleaseStatus string

const (
	MaterialReleaseStatusPending  MaterialReleaseStatus = "pending"
	MaterialReleaseStatusReleased MaterialReleaseStatus = "released"
	MaterialReleaseStatusApproved MaterialReleaseStatus = "approved"
	MaterialReleaseStatusRejected MaterialReleaseStatus = "rejected"
)

var materialReleaseTransitions = transitionTable[MaterialReleaseStatus]{
	MaterialReleaseStatusPending:  {MaterialReleaseStatusReleased},
	MaterialReleaseStatusReleased: {MaterialReleaseStatusApproved, MaterialReleaseStatusRejected},
}

func (s MaterialReleaseStatus) CanTransitionTo(next MaterialReleaseStatus) bool {
	return materialReleaseTransitions.allows(s, next)
}

func ParseMaterialReleaseStatus(raw string) (MaterialReleaseStatus, error) {
	return parseStatus(materialReleaseTransitions, raw, "material release status")
}

type ProductionRequestStatus string

const (
	ProductionRequestStatusPending       ProductionRequestStatus = "pending"
	ProductionRequestStatusDoorRequested ProductionRequestStatus = "door-requested"
	ProductionRequestStatusDoorApproved  ProductionRequestStatus = "door-approved"
	ProductionRequestStatusDoorAssigned  ProductionRequestStatus = "door-assigned"
	ProductionRequestStatusInProduction  ProductionRequestStatus = "in-production"
	ProductionRequestStatusCompleted     ProductionRequestStatus = "completed"
	ProductionRequestStatusApproved      ProductionRequestStatus = "approved"
)

var productionRequestTransitions = transitionTable[ProductionRequestStatus]{
	ProductionRequestStatusPending:       {ProductionRequestStatusDoorRequested},
	ProductionRequestStatusDoorRequested: {ProductionRequestStatusDoorApproved},
	ProductionRequestStatusDoorApproved:  {ProductionRequestStatusDoorAssigned},
	ProductionRequestStatusDoorAssigned:  {ProductionRequestStatusInProduction},
	ProductionRequestStatusInProduction:  {ProductionRequestStatusCompleted},
	ProductionRequestStatusCompleted:     {ProductionRequestStatusApproved},
}

func (s ProductionRequestStatus) CanTransitionTo(next ProductionRequestStatus) bool {
	return productionRequestTransitions.allows(s, next)
}

func ParseProductionRequestStatus(raw string) (ProductionRequestStatus, error) {
	return parseStatus(productionRequestTransitions, raw, "production request status")
}

type AssignedTaskStatus string

const (
	AssignedTaskStatusAssigned     AssignedTaskStatus = "assigned"
	AssignedTaskStatusInProduction AssignedTaskStatus = "in-production"
	AssignedTaskStatusCompleted    AssignedTaskStatus = "completed"
	AssignedTaskStatusApproved     AssignedTaskStatus = "approved"
)

var assignedTaskTransitions = transitionTable[AssignedTaskStatus]{
	AssignedTaskStatusAssigned:     {AssignedTaskStatusInProduction},
	AssignedTaskStatusInProduction: {AssignedTaskStatusCompleted},
	AssignedTaskStatusCompleted:    {AssignedTaskStatusApproved},
}

func (s AssignedTaskStatus) CanTransitionTo(next AssignedTaskStatus) bool {
	return assignedTaskTransitions.allows(s, next)
}

func ParseAssignedTaskStatus(raw string) (AssignedTaskStatus, error) {
	return parseStatus(assignedTaskTransitions, raw, "task status")
}

/* Orders */

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusReleased  OrderStatus = "released"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

var orderTransitions = transitionTable[OrderStatus]{
	OrderStatusPlaced:   {OrderStatusReleased},
	OrderStatusReleased: {OrderStatusShipped},
	OrderStatusShipped:  {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions.allows(s, next)
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	return parseStatus(orderTransitions, raw, "order status")
}

type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

var paymentTransitions = transitionTable[PaymentStatus]{
	PaymentStatusPaid: {PaymentStatusConfirmed},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return paymentTransitions.allows(s, next)
}

type DispatchStatus string

const (
	DispatchStatusAssigned  DispatchStatus = "assigned"
	DispatchStatusDelivered DispatchStatus = "delivered"
)

var dispatchTransitions = transitionTable[DispatchStatus]{
	DispatchStatusAssigned: {DispatchStatusDelivered},
}

func (s DispatchStatus) CanTransitionTo(next DispatchStatus) bool {
	return dispatchTransitions.allows(s, next)
}

/* Service bookings */

type ServicePaymentStatus string

const (
	ServicePaymentStatusPending   ServicePaymentStatus = "pending"
	ServicePaymentStatusConfirmed ServicePaymentStatus = "confirmed"
)

type ServiceStatus string

const (
	ServiceStatusRequested               ServiceStatus = "requested"
	ServiceStatusPaymentConfirmed        ServiceStatus = "payment_confirmed"
	ServiceStatusAllocatedToSupervisor   ServiceStatus = "allocated_to_supervisor"
	ServiceStatusTechnicianAssigned      ServiceStatus = "technician_assigned"
	ServiceStatusInProgress              ServiceStatus = "in_progress"
	ServiceStatusRendered                ServiceStatus = "rendered"
	ServiceStatusSupervisorApproved      ServiceStatus = "supervisor_approved"
	ServiceStatusServiceManagerConfirmed ServiceStatus = "service_manager_confirmed"
	ServiceStatusCompleted               ServiceStatus = "completed"
)

// serviceStatusChain is the only path a booking may take, one step at a time.
var serviceStatusChain = []ServiceStatus{
	ServiceStatusRequested,
	ServiceStatusPaymentConfirmed,
	ServiceStatusAllocatedToSupervisor,
	ServiceStatusTechnicianAssigned,
	ServiceStatusInProgress,
	ServiceStatusRendered,
	ServiceStatusSupervisorApproved,
	ServiceStatusServiceManagerConfirmed,
	ServiceStatusCompleted,
}

var serviceStatusTransitions = func() transitionTable[ServiceStatus] {
	t := transitionTable[ServiceStatus]{}
	for i := 0; i+1 < len(serviceStatusChain); i++ {
		t[serviceStatusChain[i]] = []ServiceStatus{serviceStatusChain[i+1]}
	}
	return t
}()

func (s ServiceStatus) CanTransitionTo(next ServiceStatus) bool {
	return serviceStatusTransitions.allows(s, next)
}

// Rank is the position of s in the service chain, -1 when unknown.
func (s ServiceStatus) Rank() int {
	for i, v := range serviceStatusChain {
		if v == s {
			return i
		}
	}
	return -1
}

// HasReached reports whether s is at or past target in the chain.
func (s ServiceStatus) HasReached(target ServiceStatus) bool {
	r := s.Rank()
	return r >= 0 && r >= target.Rank()
}

func ParseServiceStatus(raw string) (ServiceStatus, error) {
	return parseStatus(serviceStatusTransitions, raw, "service status")
}

/* Tools */

type ToolRequestStatus string

const (
	ToolRequestStatusPending  ToolRequestStatus = "Pending"
	ToolRequestStatusApproved ToolRequestStatus = "Approved"
	ToolRequestStatusRejected ToolRequestStatus = "Rejected"
	ToolRequestStatusReturned ToolRequestStatus = "Returned"
)

var toolRequestTransitions = transitionTable[ToolRequestStatus]{
	ToolRequestStatusPending:  {ToolRequestStatusApproved, ToolRequestStatusRejected},
	ToolRequestStatusApproved: {ToolRequestStatusReturned},
}

func (s ToolRequestStatus) CanTransitionTo(next ToolRequestStatus) bool {
	return toolRequestTransitions.allows(s, next)
}

type ToolReturnStatus string

const (
	ToolReturnStatusNotReturned       ToolReturnStatus = "Not Returned"
	ToolReturnStatusPartiallyReturned ToolReturnStatus = "Partially Returned"
	ToolReturnStatusFullyReturned     ToolReturnStatus = "Fully Returned"
)

/* Directory */

type EmployeeRole string

const (
	EmployeeRoleAdmin             EmployeeRole = "Admin"
	EmployeeRoleSupplier          EmployeeRole = "Supplier"
	EmployeeRoleInventoryManager  EmployeeRole = "Inventory Manager"
	EmployeeRoleProductionManager EmployeeRole = "Production Manager"
	EmployeeRoleBlacksmith        EmployeeRole = "Blacksmith"
	EmployeeRoleFinanceManager    EmployeeRole = "Finance Manager"
	EmployeeRoleDispatchManager   EmployeeRole = "Dispatch Manager"
	EmployeeRoleDriver            EmployeeRole = "Driver"
	EmployeeRoleServiceManager    EmployeeRole = "Service Manager"
	EmployeeRoleSupervisor        EmployeeRole = "Supervisor"
	EmployeeRoleTechnician        EmployeeRole = "Technician"
)

var employeeRoles = []EmployeeRole{
	EmployeeRoleAdmin, EmployeeRoleSupplier, EmployeeRoleInventoryManager, EmployeeRoleProductionManager,
	EmployeeRoleBlacksmith, EmployeeRoleFinanceManager, EmployeeRoleDispatchManager, EmployeeRoleDriver,
	EmployeeRoleServiceManager, EmployeeRoleSupervisor, EmployeeRoleTechnician,
}

func ParseEmployeeRole(raw string) (EmployeeRole, error) {
	for _, r := range employeeRoles {
		if strings.EqualFold(string(r), strings.TrimSpace(raw)) {
			return r, nil
		}
	}
	return "", errors.New("invalid employee role: " + raw)
}

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(raw string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve", "approved", "accept", "accepted":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	}
	return "", errors.New("decision must be approve or reject")
}
