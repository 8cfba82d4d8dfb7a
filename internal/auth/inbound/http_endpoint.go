package inbound

import (
	"github.com/niagakita/passless/internal/auth/usecase"
	"github.com/niagakita/passless/internal/pkg/router"
	"github.com/samber/lo"
)

// HTTPEndpoint exposes HTTP handlers for the passwordless login flow.
type HTTPEndpoint struct {
	uc uc
}

// Login requests a verification code for an identifier, registering the
// account on first contact.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{Identifier: req.Identifier})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Destination:      resp.Identifier,
		Channel:          resp.Channel,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// Resend requests a fresh verification code for an existing account.
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req ResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Resend(r.Context(), usecase.ResendInput{Identifier: req.Identifier})
	if err != nil {
		return nil, err
	}

	return ResendResponse{
		Destination:      resp.Identifier,
		Channel:          resp.Channel,
		ExpiresInSeconds: resp.ExpiresInSeconds,
	}, nil
}

// Verify exchanges a correct code for an opaque session token.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Identifier: req.Identifier,
		Code:       req.Code,
		IP:         r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Token:            resp.Token,
		ExpiresAt:        resp.ExpiresAt,
		ProfileCompleted: resp.ProfileCompleted,
	}, nil
}

// Logout ends the current session. Repeating it is harmless.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}
	return nil, nil
}

// LogoutAll ends every active session of the caller.
func (h *HTTPEndpoint) LogoutAll(r *router.Request) (any, error) {
	resp, err := h.uc.LogoutAll(r.Context())
	if err != nil {
		return nil, err
	}
	return LogoutAllResponse{SessionsEnded: resp.SessionsEnded}, nil
}

// Profile returns the caller's account details.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		UserID:           resp.UserID,
		Mobile:           resp.Mobile,
		Email:            resp.Email,
		FirstName:        resp.FirstName,
		LastName:         resp.LastName,
		ProfileCompleted: resp.ProfileCompleted,
		CreatedAt:        resp.CreatedAt,
	}, nil
}

// ProfileUpdate completes the caller's profile.
func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// Sessions lists the caller's active sessions.
func (h *HTTPEndpoint) Sessions(r *router.Request) (any, error) {
	resp, err := h.uc.Sessions(r.Context())
	if err != nil {
		return nil, err
	}

	items := lo.Map(resp.Sessions, func(s usecase.SessionInfo, _ int) SessionItem {
		return SessionItem{
			SessionID: s.SessionID,
			IP:        s.IP,
			UserAgent: s.UserAgent,
			IssuedAt:  s.IssuedAt,
			ExpiresAt: s.ExpiresAt,
			Current:   s.Current,
		}
	})

	return SessionsResponse{Sessions: items}, nil
}
