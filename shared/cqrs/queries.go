package cqrs

// GetAccountQuery fetches a single account by id.
type GetAccountQuery struct {
	AccountID string
}

// ListAccountsQuery fetches all accounts belonging to a user.
type ListAccountsQuery struct {
	UserID string
}
