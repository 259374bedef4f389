package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/designer/internal/auth/domain"
	"github.com/aussiebroadwan/designer/internal/auth/service"
	"github.com/aussiebroadwan/designer/pkg/authsdk"
	"github.com/aussiebroadwan/designer/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

func userInfo(u domain.User) authsdk.UserInfo {
	return authsdk.UserInfo{
		ID:       u.ID,
		UserName: u.Username,
		Roles:    service.DeriveRoles(u),
	}
}

// ServeHTTP lists all users for an admin caller.
func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, found, err := h.UserService.GetUser(ctx, httpx.UsernameFromContext(ctx))
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}
	if !found {
		httpx.WriteMessage(w, http.StatusForbidden, httpx.MsgNotPermitted)
		return
	}

	users, err := h.UserService.ListUsers(ctx, caller)
	if errors.Is(err, service.ErrForbidden) {
		httpx.WriteMessage(w, http.StatusForbidden, httpx.MsgNotPermitted)
		return
	}
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgServerError)
		return
	}

	out := authsdk.UsersResponse{Users: make([]authsdk.UserInfo, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userInfo(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
