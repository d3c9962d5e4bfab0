package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	kakaoStateCookie = "kakao_oauth_state"
	kakaoStateTTL    = 10 * time.Minute
)

// KakaoLogin is the part of the Kakao client used by the login flow.
type KakaoLogin interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchEmail(ctx context.Context, accessToken string) (string, error)
}

func (a *api) kakaoLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     kakaoStateCookie,
		Value:    state,
		Path:     "/api/auth/kakao",
		MaxAge:   int(kakaoStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.kakao.AuthorizeURL(state), http.StatusFound)
}

func (a *api) kakaoCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		a.logger.Info("kakao login declined", "error", e, "description", q.Get("error_description"))
		respondError(w, http.StatusBadRequest, "Kakao login was cancelled.")
		return
	}

	cookie, err := r.Cookie(kakaoStateCookie)
	state := q.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		respondError(w, http.StatusBadRequest, "Invalid OAuth state.")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: kakaoStateCookie, Path: "/api/auth/kakao", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Authorization code is required.")
		return
	}

	accessToken, err := a.kakao.ExchangeCode(r.Context(), code)
	if err != nil {
		a.logger.Warn("kakao code exchange failed", "err", err)
		respondError(w, http.StatusBadGateway, "Kakao login failed.")
		return
	}
	email, err := a.kakao.FetchEmail(r.Context(), accessToken)
	if err != nil {
		a.logger.Warn("kakao profile lookup failed", "err", err)
		respondError(w, http.StatusBadGateway, "Kakao login failed.")
		return
	}

	member, err := a.domain.Members.UpsertKakaoMember(r.Context(), email, accessToken)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}
	token, err := a.auth.IssueFor(member)
	if err != nil {
		writeError(w, r, a.logger, err)
		return
	}

	a.logger.Info("kakao login", "member_id", member.ID)
	respondJSON(w, http.StatusOK, tokenResponse{Token: token})
}
