package models

import (
	"log"

	"github.com/evanbosire/Eurodoor-Backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Employee{}, &Customer{},
		&RawMaterialRequest{}, &RawMaterialStock{}, &MaterialReleaseRequest{},
		&ProductionRequest{}, &AssignedTask{}, &ProductStore{},
		&Product{}, &Cart{}, &CartItem{},
		&Order{}, &OrderItem{}, &Payment{}, &Dispatch{}, &Feedback{}, &Receipt{},
		&ServiceBooking{}, &ServiceFeedback{}, &ServiceReceipt{},
		&Tool{}, &ToolRequest{}, &ToolRequestLine{},
		&InventoryLog{},
		&WorkflowEvent{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
