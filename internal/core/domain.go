package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// DateLayout is the canonical on-disk representation of a Date.
const DateLayout = "2006-01-02"

type (
	Kind string

	Date struct {
		time.Time
	}

	// ID identifies a transaction. Ids generated by the ledger, or loaded
	// from a purely numeric token, are managed and take part in id
	// generation. Any other token is kept verbatim as an unmanaged id.
	// Numeric tokens beyond the int64 range stay managed with their text
	// kept and their number saturated.
	ID struct {
		num     int64
		text    string
		managed bool
	}

	Transaction struct {
		ID       ID
		Title    string
		Amount   decimal.NullDecimal // Invalid when the source row had no amount
		Date     Date                // Zero when the source row had no date
		Category string
	}

	Transactions []Transaction
)

var (
	ErrInvalidDate   = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
	ErrInvalidKind   = errors.New("category must be 'expense' or 'income'")
	ErrEmptyTitle    = errors.New("title cannot be empty")
	ErrMissingID     = errors.New("missing id")
)

// NewID returns a managed id.
func NewID(n int64) ID {
	return ID{num: n, managed: true}
}

// ParseID converts a stored token into an ID. Blank tokens yield the zero ID.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	switch {
	case err == nil:
		return NewID(n)
	case errors.Is(err, strconv.ErrRange):
		return ID{num: n, text: s, managed: true}
	}
	return ID{text: s}
}

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return !id.managed && id.text == ""
}

// Number returns the numeric value of a managed id, clamped to the int64
// range.
func (id ID) Number() (int64, bool) {
	return id.num, id.managed
}

func (id ID) String() string {
	if id.managed && id.text == "" {
		return strconv.FormatInt(id.num, 10)
	}
	return id.text
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty returns true if the date is absent
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey formats the date as YYYY-MM.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the fields a record needs to stay in a cleaned ledger.
func (t Transaction) Validate() error {
	if t.ID.IsZero() {
		return ErrMissingID
	}
	if !t.Amount.Valid {
		return ErrInvalidAmount
	}
	return t.Date.Validate()
}

// Equal compares every field, treating absent values as equal to each other.
func (t Transaction) Equal(o Transaction) bool {
	if t.ID != o.ID || t.Title != o.Title || t.Category != o.Category {
		return false
	}
	if !t.Date.Equal(o.Date.Time) {
		return false
	}
	if t.Amount.Valid != o.Amount.Valid {
		return false
	}
	return !t.Amount.Valid || t.Amount.Decimal.Equal(o.Amount.Decimal)
}

// Clone returns a copy that can be appended to without aliasing t.
func (t Transactions) Clone() Transactions {
	out := make(Transactions, len(t))
	copy(out, t)
	return out
}

// ParseKind normalizes user input into an expense or income kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Expense, Income:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

// SignAmount applies the ledger sign convention: expenses negative, income positive.
func (k Kind) SignAmount(amount decimal.Decimal) decimal.Decimal {
	if k == Expense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
