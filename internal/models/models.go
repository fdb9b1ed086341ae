package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	ZipCode   string    `db:"zip_code" json:"zip_code"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Account struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	AccountType   string    `db:"account_type" json:"account_type"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	RoutingNumber string    `db:"routing_number" json:"routing_number"`
	Balance       int64     `db:"balance" json:"balance"`
	IsFrozen      bool      `db:"is_frozen" json:"is_frozen"`
	FrozenByAdmin bool      `db:"frozen_by_admin" json:"frozen_by_admin"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const (
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
	AccountTypeInvestment = "investment"
	AccountTypeEscrow     = "escrow"
)

// Transaction rows are insert-only. Amount is always positive; direction is
// carried by Type.
type Transaction struct {
	ID          string    `db:"id" json:"id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"transaction_type" json:"transaction_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
)

type Card struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	CardNumber  string    `db:"card_number" json:"card_number"`
	CardType    string    `db:"card_type" json:"card_type"`
	ExpiryMonth int       `db:"expiry_month" json:"expiry_month"`
	ExpiryYear  int       `db:"expiry_year" json:"expiry_year"`
	CVV         string    `db:"cvv" json:"-"`
	HolderName  string    `db:"holder_name" json:"holder_name"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)
