package skport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const (
	// appCodeGame is sent with code grants (steady-state signing chain).
	appCodeGame = "6eb76d4e13aa36e6"

	// appCodeApp is sent with token grants (initial login flow).
	appCodeApp = "3dacefa138426cfe"

	accountTokenCookie = "ACCOUNT_TOKEN"
)

// TokenByEmailPassword authenticates with the account service and returns
// the long-lived credential token. Only the link flow calls this; the
// token is then persisted and refreshed in the background.
func (c *Client) TokenByEmailPassword(ctx context.Context, email, password string) (LoginResult, error) {
	req := struct {
		Email    string `json:"email"`
		From     int    `json:"from"`
		Password string `json:"password"`
	}{Email: email, From: 1, Password: password}

	var result LoginResult
	if err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.authBase,
		path:   "/user/auth/v1/token_by_email_password",
		body:   req,
	}, &result); err != nil {
		return LoginResult{}, err
	}

	return result, nil
}

// GrantOAuth requests an OAuth grant for the given credential token.
// GrantTypeCode returns a single-use exchange code; GrantTypeToken returns
// an OAuth token plus hgId and is only used during initial login.
// Failures carry KindGrantFailed with the upstream message preserved.
func (c *Client) GrantOAuth(ctx context.Context, token string, typ GrantType) (Grant, error) {
	appCode := appCodeGame
	if typ == GrantTypeToken {
		appCode = appCodeApp
	}

	req := struct {
		AppCode string `json:"appCode"`
		Token   string `json:"token"`
		Type    int    `json:"type"`
	}{AppCode: appCode, Token: token, Type: int(typ)}

	var grant Grant
	if err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.authBase,
		path:   "/user/oauth2/v2/grant",
		body:   req,
	}, &grant); err != nil {
		return Grant{}, rekind(err, KindGrantFailed)
	}

	return grant, nil
}

// GenerateCred exchanges a grant code for a Session. The code is single
// use; the server rejects a second exchange. Failures carry
// KindExchangeFailed with the upstream message preserved.
func (c *Client) GenerateCred(ctx context.Context, code string) (*Session, error) {
	req := struct {
		Kind int    `json:"kind"`
		Code string `json:"code"`
	}{Kind: 1, Code: code}

	var payload struct {
		Cred   string `json:"cred"`
		UserID string `json:"userId"`
		Token  string `json:"token"`
	}

	if err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.apiBase,
		path:   "/web/v1/user/auth/generate_cred_by_code",
		body:   req,
	}, &payload); err != nil {
		return nil, rekind(err, KindExchangeFailed)
	}

	return &Session{
		Cred:      payload.Cred,
		UserID:    payload.UserID,
		signToken: payload.Token,
	}, nil
}

// ObtainSession runs the steady-state credential chain: code grant, then
// cred exchange. The first failing step short-circuits the chain and its
// error is returned unchanged. No retry happens here; callers retry on
// their own schedule with a fresh chain.
func (c *Client) ObtainSession(ctx context.Context, storedToken string) (*Session, error) {
	grant, err := c.GrantOAuth(ctx, storedToken, GrantTypeCode)
	if err != nil {
		return nil, err
	}

	return c.GenerateCred(ctx, grant.Code)
}

// AccountToken rotates the long-lived credential token. The new token
// arrives as the ACCOUNT_TOKEN Set-Cookie on the response rather than in
// the envelope body.
func (c *Client) AccountToken(ctx context.Context, storedToken string) (string, error) {
	req := struct {
		Content string `json:"content"`
	}{Content: storedToken}

	_, resp, err := c.doRaw(ctx, request{
		method: http.MethodPost,
		base:   c.webBase,
		path:   "/cookie_store/account_token",
		body:   req,
	})
	if err != nil {
		return "", err
	}

	for _, ck := range resp.Cookies() {
		if ck.Name != accountTokenCookie || ck.Value == "" {
			continue
		}

		value, unescErr := url.QueryUnescape(ck.Value)
		if unescErr != nil {
			value = ck.Value
		}

		return value, nil
	}

	return "", apiErr(KindApplication, fmt.Sprintf("response missing %s cookie", accountTokenCookie), nil)
}

// rekind retags a normalized error with a chain-step kind, preserving the
// upstream message.
func rekind(err error, kind ErrorKind) error {
	var apiError *Error
	if errors.As(err, &apiError) {
		return &Error{Kind: kind, Message: apiError.Message, Cause: apiError.Cause}
	}

	return apiErr(kind, err.Error(), err)
}
