package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is written with exactly two decimal places, the scale the ledger
// stores, so 1500 renders as "1500.00". Decoding accepts any decimal form.

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func (a Account) MarshalJSON() ([]byte, error) {
	type plain Account
	return json.Marshal(struct {
		plain
		Balance string `json:"balance"`
	}{plain(a), money(a.Balance)})
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(t), money(t.Amount)})
}

func (r DepositResponse) MarshalJSON() ([]byte, error) {
	type plain DepositResponse
	return json.Marshal(struct {
		plain
		Amount     string `json:"amount"`
		NewBalance string `json:"newBalance"`
	}{plain(r), money(r.Amount), money(r.NewBalance)})
}

func (r TransferResponse) MarshalJSON() ([]byte, error) {
	type plain TransferResponse
	return json.Marshal(struct {
		plain
		Amount                string `json:"amount"`
		FromAccountNewBalance string `json:"fromAccountNewBalance"`
		ToAccountNewBalance   string `json:"toAccountNewBalance"`
	}{plain(r), money(r.Amount), money(r.FromAccountNewBalance), money(r.ToAccountNewBalance)})
}
