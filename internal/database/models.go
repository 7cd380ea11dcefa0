package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Row types for the six seed tables. Identifiers come from the source data
// verbatim; nothing here is generated by the store.

type Product struct {
	ID    int32
	Name  string
	Price pgtype.Numeric
}

type User struct {
	ID       int32
	Name     string
	Email    string
	Password string
}

type Address struct {
	ID        int32
	UserID    int32
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

type Cart struct {
	ID        int32
	UserID    int32
	ProductID int32
	Quantity  int32
	CreatedAt time.Time
}

type Order struct {
	ID        int32
	UserID    int32
	CreatedAt time.Time
}

type OrderProduct struct {
	ID        int32
	OrderID   int32
	ProductID int32
	Quantity  int32
}
