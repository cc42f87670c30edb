package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// GenerateAccountNumber generates a 7-digit account number in [1000000, 9999999].
func GenerateAccountNumber() string {
	num, _ := rand.Int(rand.Reader, big.NewInt(9000000))
	return fmt.Sprintf("%07d", num.Int64()+1000000)
}

// ValidateAccountID accepts any non-empty identifier without surrounding or
// embedded whitespace. Ids are opaque to the ledger.
func ValidateAccountID(accountID string) bool {
	return accountID != "" && !strings.ContainsAny(accountID, " \t\r\n/")
}

// HasCentPrecision reports whether d has at most two fractional digits, the
// scale balances are stored at.
func HasCentPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
