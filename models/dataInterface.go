package models

import "time"

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

func (p Product) GetId() int {
	return p.ID
}

func (p Product) GetDefault(id int) Data {
	return Product{
		ID:        id,
		Status:    ProductStatusInactive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (t Tool) GetId() int {
	return t.ID
}

func (t Tool) GetDefault(id int) Data {
	return Tool{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

func (c Customer) GetId() int {
	return c.ID
}

func (c Customer) GetDefault(id int) Data {
	return Customer{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

func (e Employee) GetId() int {
	return e.ID
}

func (e Employee) GetDefault(id int) Data {
	return Employee{
		ID:        id,
		Status:    EmployeeStatusInactive,
		CreatedAt: time.Now(),
	}
}
