package domain

import "time"

// LocalUser is the persisted user record. Subject is the external identity's
// unique id (the token `sub` claim) and is the join key between the identity
// provider and local storage; it is unique in storage.
type LocalUser struct {
	Subject   string    `bson:"subject"`
	Email     string    `bson:"email"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// PlaidItem is a linked financial institution item. AccessToken is stored
// encrypted; only the vault cipher ever sees the plaintext.
type PlaidItem struct {
	ItemID          string    `bson:"item_id"`
	Subject         string    `bson:"subject"`
	AccessToken     string    `bson:"access_token"`
	InstitutionName string    `bson:"institution_name,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// Transaction is a normalized view of an aggregator transaction, passed
// through to the client as-is.
type Transaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Name          string   `json:"name"`
	Amount        float64  `json:"amount"`
	ISOCurrency   string   `json:"iso_currency_code,omitempty"`
	Date          string   `json:"date"`
	Categories    []string `json:"categories,omitempty"`
	Pending       bool     `json:"pending"`
}
