package verification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

// Backend performs the identity-provider exchange on the storefront's behalf.
type Backend interface {
	VerificationAuthorize(ctx context.Context) (*backend.AuthorizeResponse, error)
	VerificationCallback(ctx context.Context, req backend.VerificationCallbackRequest) (*backend.VerificationResult, error)
}

// CallbackParams are the query parameters the identity provider returns with.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// Service drives the authorization-code round trip with the identity provider.
type Service interface {
	Authorize(ctx context.Context) (string, error)
	Callback(ctx context.Context, params CallbackParams) (*backend.VerificationResult, error)
}

type service struct {
	backend Backend
	logg    *logger.Logger
}

func NewService(be Backend, logg *logger.Logger) (Service, error) {
	if be == nil {
		return nil, fmt.Errorf("verification backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: be, logg: logg}, nil
}

// Authorize returns the provider URL the browser must navigate to.
func (s *service) Authorize(ctx context.Context) (string, error) {
	res, err := s.backend.VerificationAuthorize(ctx)
	if err != nil {
		return "", err
	}
	target := strings.TrimSpace(res.AuthorizationURL)
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "identity provider returned an invalid authorization url")
	}
	return target, nil
}

// Callback forwards code and state to the backend, which performs the token exchange.
func (s *service) Callback(ctx context.Context, params CallbackParams) (*backend.VerificationResult, error) {
	if e := strings.TrimSpace(params.Error); e != "" {
		msg := strings.TrimSpace(params.ErrorDescription)
		if msg == "" {
			msg = "verification was not completed"
		}
		s.logg.Warn(s.logg.WithField(ctx, "provider_error", e), "verification.provider_error")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"error": e})
	}
	code := strings.TrimSpace(params.Code)
	state := strings.TrimSpace(params.State)
	if code == "" || state == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing code or state")
	}
	res, err := s.backend.VerificationCallback(ctx, backend.VerificationCallbackRequest{Code: code, State: state})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "verification_status", res.Status), "verification.completed")
	return res, nil
}
