package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/fleetadmin/internal/client/client"
)

const changePasswordPath = "/change-password-super/%d/"

// Users holds the user actions that are not plain CRUD.
type Users struct {
	api Requester
}

func NewUsers(api Requester) *Users {
	return &Users{api: api}
}

// ChangePassword sets a new password for another user. Only super admins
// are allowed to do this; the backend enforces it.
func (u *Users) ChangePassword(ctx context.Context, userID int64, newPassword []byte) error {
	req := client.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf(changePasswordPath, userID),
		Body:   map[string]string{"new_password": string(newPassword)},
	}
	if err := u.api.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("change password of user %d: %w", userID, err)
	}
	return nil
}
