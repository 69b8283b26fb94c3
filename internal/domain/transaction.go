package domain

import (
	"encoding/json"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Transaction is a single ledger line. Income or expense classification comes
// from the linked category's type, not from the sign of Amount.
type Transaction struct {
	ID          int64
	UserID      int64
	CategoryID  *int64
	Amount      Money
	Date        Date
	Description *string
	CreatedAt   time.Time
}

// NewTransaction carries the caller supplied fields of a transaction to create.
type NewTransaction struct {
	Amount      Money
	Date        Date
	Description *string
	CategoryID  *int64
}

// DateRange bounds are inclusive; a nil bound is open.
type DateRange struct {
	From *Date
	To   *Date
}

// TransactionFilter narrows a ledger listing. All set fields are ANDed.
type TransactionFilter struct {
	DateRange
	CategoryID   *int64
	CategoryType *CategoryType
}

// Page selects a window of an ordered listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// OptionalID distinguishes an omitted field (Set=false) from an explicit null
// (Set=true, Value=nil).
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// TransactionPatch lists the fields an update mutates; nil / unset fields keep
// their stored values.
type TransactionPatch struct {
	Amount      *Money
	Date        *Date
	Description OptionalString
	CategoryID  OptionalID
}

func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Date == nil && !p.Description.Set && !p.CategoryID.Set
}

// Apply mutates t with the supplied fields only.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.CategoryID.Set {
		t.CategoryID = p.CategoryID.Value
	}
}
