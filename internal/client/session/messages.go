package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
)

// User-visible messages.
const (
	MsgInvalidCredentials = "نام کاربری یا رمز عبور اشتباه است."
	MsgNetwork            = "خطا در ارتباط با سرور. لطفاً دوباره تلاش کنید."
	MsgSessionExpired     = "نشست شما منقضی شده است. لطفاً دوباره وارد شوید."
	MsgLoginFailed        = "ورود ناموفق بود."
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSuperseded         = errors.New("session changed while checking")
)

func loginMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return MsgNetwork
	default:
		return MsgLoginFailed
	}
}

func classifyLogin(err error) error {
	if client.IsStatus(err, http.StatusBadRequest) || client.IsStatus(err, http.StatusUnauthorized) {
		return errors.Join(ErrInvalidCredentials, err)
	}
	return err
}
