package screens

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
	"github.com/dmitrijs2005/fleetadmin/internal/client/session"
	"github.com/dmitrijs2005/fleetadmin/internal/common"
)

// User-visible messages.
const (
	MsgFillAllFields = "لطفا تمام فیلدها را پر کنید"
	MsgForbidden     = "شما به این بخش دسترسی ندارید."
	MsgNotFound      = "مورد درخواستی یافت نشد."
	MsgCancelled     = "عملیات لغو شد."
	MsgInvalidChoice = "گزینه انتخاب شده معتبر نیست."
	MsgUnexpected    = "مشکلی پیش آمده است."
	MsgServerPrefix  = "خطای سرور: "
)

// Message turns any error from a screen into one line for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var he *client.HTTPError
	switch {
	case errors.Is(err, common.ErrValidation):
		return MsgFillAllFields
	case errors.Is(err, common.ErrCancelled), errors.Is(err, context.Canceled):
		return MsgCancelled
	case errors.Is(err, ErrInvalidChoice):
		return MsgInvalidChoice
	case errors.Is(err, common.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, client.ErrUnauthorized):
		return session.MsgSessionExpired
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return session.MsgNetwork
	case errors.As(err, &he):
		switch {
		case he.HasFieldErrors():
			return he.Message()
		case he.Status == http.StatusForbidden:
			return MsgForbidden
		case he.Status == http.StatusNotFound:
			return MsgNotFound
		default:
			return MsgServerPrefix + he.Message()
		}
	default:
		return MsgUnexpected
	}
}
