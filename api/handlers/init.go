package handlers

import (
	"github.com/iamail/mailgate/services"
)

type APIHandlers struct {
	Accounts *AccountsHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Accounts: NewAccountsHandler(s.AccountService),
	}
}
