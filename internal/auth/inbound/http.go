package inbound

import (
	"context"

	"github.com/niagakita/passless/internal/auth/usecase"
	"github.com/niagakita/passless/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.ResendOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)

	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) (*usecase.LogoutAllOutput, error)

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) error
	Sessions(ctx context.Context) (*usecase.SessionsOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Passwordless login flow
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/resend", end.Resend)
	r.POST("/api/v1/auth/verify", end.Verify)

	// Session management (need authenticated)
	r.POST("/api/v1/auth/logout", end.Logout)
	r.POST("/api/v1/auth/logout-all", end.LogoutAll)
	r.GET("/api/v1/auth/sessions", end.Sessions)

	// Profile (need authenticated)
	r.GET("/api/v1/auth/profile", end.Profile)
	r.PUT("/api/v1/auth/profile", end.ProfileUpdate)
}
