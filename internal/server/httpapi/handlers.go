package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/omhauth/internal/common"
	"github.com/dmitrijs2005/omhauth/internal/server/metrics"
	"github.com/dmitrijs2005/omhauth/internal/server/models"
	"github.com/dmitrijs2005/omhauth/internal/server/services"
)

// Request parameter names.
const (
	paramUsername     = "username"
	paramPassword     = "password"
	paramSessionToken = common.SessionTokenParamName
	paramResponseType = "response_type"
	paramClientID     = "client_id"
	paramClientSecret = "client_secret"
	paramRedirectURI  = "redirect_uri"
	paramScope        = "scope"
	paramState        = "state"
	paramCode         = "code"
	paramGranted      = "granted"
	paramGrantType    = "grant_type"
	paramRefreshToken = "refresh_token"
)

type loginResponse struct {
	Token     string `json:"omh_auth_token"`
	ExpiresIn int64  `json:"expires_in"`
}

type sessionResponse struct {
	Username string `json:"username"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}

type tokenInfoResponse struct {
	Username  string `json:"username"`
	ClientID  string `json:"client_id"`
	Scope     string `json:"scope"`
	ExpiresIn int64  `json:"expires_in"`
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.PingContext(r.Context()); err != nil {
			a.log.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/auth
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "malformed form body", "")
		return
	}

	st, err := a.sessions.Login(r.Context(), r.PostForm.Get(paramUsername), r.PostForm.Get(paramPassword))
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}

	a.metrics.RecordIssued(metrics.KindSession)
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     st.Token,
		ExpiresIn: int64(st.ExpiresAt.Sub(a.now()).Seconds()),
	})
}

// GET /v1/auth/session
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(paramSessionToken)
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "missing "+paramSessionToken, "")
		return
	}

	username, ok, err := a.sessions.Resolve(r.Context(), token)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	if !ok {
		a.metrics.RecordRejection("InvalidToken")
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_token", Description: "unknown or expired session token"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Username: username})
}

// GET /v1/auth/oauth/authorize
func (a *API) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get(paramState)

	if rt := q.Get(paramResponseType); rt != "code" {
		a.writeProblem(w, r, services.ReasonUnsupportedResponseType, "response_type must be \"code\"", state)
		return
	}
	if q.Has(paramRedirectURI) {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "redirect_uri is fixed at registration and must not be sent", state)
		return
	}

	tp, err := a.clients.Get(r.Context(), q.Get(paramClientID))
	if err != nil {
		if errors.Is(err, services.ErrUnknownClient) {
			a.writeProblem(w, r, services.ReasonInvalidRequest, "unknown client_id", state)
			return
		}
		a.writeError(w, r, err, state)
		return
	}

	code, err := a.codes.Issue(r.Context(), tp, models.ParseScopes(q.Get(paramScope)), state)
	if err != nil {
		a.writeError(w, r, err, state)
		return
	}
	a.metrics.RecordIssued(metrics.KindCode)

	v := url.Values{}
	v.Set(paramCode, code.Code)
	v.Set(paramScope, models.ScopeString(code.Scopes))
	if state != "" {
		v.Set(paramState, state)
	}
	v.Set("name", tp.Name)
	v.Set("description", tp.Description)
	http.Redirect(w, r, withQuery(a.authorizePage, v), http.StatusFound)
}

// POST /v1/auth/oauth/authorization
func (a *API) handleAuthorization(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "malformed form body", "")
		return
	}
	f := r.PostForm

	granted, err := strconv.ParseBool(f.Get(paramGranted))
	if err != nil {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "granted must be true or false", "")
		return
	}

	code, _, err := a.verifications.Decide(r.Context(), f.Get(paramCode), f.Get(paramUsername), f.Get(paramPassword), granted)
	if code == nil {
		// Without a resolved code there is no client to redirect to.
		a.writeError(w, r, err, "")
		return
	}

	tp, lookupErr := a.clients.Get(r.Context(), code.ThirdPartyID)
	if lookupErr != nil {
		a.writeError(w, r, lookupErr, code.State)
		return
	}

	v := url.Values{}
	if err != nil {
		reason, ok := services.ReasonOf(err)
		if !ok || reason.Class() == services.ClassIntegrity {
			a.writeError(w, r, err, code.State)
			return
		}
		a.metrics.RecordRejection(string(reason))
		v.Set("error", "access_denied")
		v.Set("error_description", describe(err))
	} else {
		a.metrics.RecordIssued(metrics.KindVerification)
		v.Set(paramCode, code.Code)
	}
	if code.State != "" {
		v.Set(paramState, code.State)
	}
	http.Redirect(w, r, withQuery(tp.RedirectURI, v), http.StatusFound)
}

// POST /v1/auth/oauth/token
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.writeProblem(w, r, services.ReasonInvalidRequest, "malformed form body", "")
		return
	}
	f := r.PostForm

	req := services.TokenRequest{
		GrantType:    f.Get(paramGrantType),
		ClientID:     f.Get(paramClientID),
		ClientSecret: f.Get(paramClientSecret),
		Code:         f.Get(paramCode),
		RefreshToken: f.Get(paramRefreshToken),
	}
	if id, secret, ok := r.BasicAuth(); ok && req.ClientID == "" {
		req.ClientID, req.ClientSecret = id, secret
	}

	t, err := a.tokens.Exchange(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}

	a.metrics.RecordIssued(metrics.KindAccessToken)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    int64(t.ExpiresIn(a.now()).Seconds()),
		TokenType:    common.BearerTokenType,
		Scope:        models.ScopeString(t.Scopes),
	})
}

// GET /v1/auth/oauth/token
func (a *API) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="omhauth"`)
		a.writeProblem(w, r, services.ReasonInvalidRequest, "missing bearer token", "")
		return
	}

	t, ok, err := a.tokens.Resolve(r.Context(), token)
	if err != nil {
		a.writeError(w, r, err, "")
		return
	}
	if !ok {
		a.metrics.RecordRejection("InvalidToken")
		w.Header().Set("WWW-Authenticate", `Bearer realm="omhauth", error="invalid_token"`)
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_token", Description: "unknown, expired or superseded access token"})
		return
	}

	writeJSON(w, http.StatusOK, tokenInfoResponse{
		Username:  t.Username,
		ClientID:  t.ThirdPartyID,
		Scope:     models.ScopeString(t.Scopes),
		ExpiresIn: int64(t.ExpiresIn(a.now()).Seconds()),
	})
}

func describe(err error) string {
	var e *services.Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return err.Error()
}

// withQuery appends v to base, keeping any query base already has.
func withQuery(base string, v url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + v.Encode()
	}
	q := u.Query()
	for k, vals := range v {
		for _, val := range vals {
			q.Add(k, val)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
