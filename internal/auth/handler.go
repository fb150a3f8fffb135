package auth

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	accessTokenCookie   = "access_token"
	loginSessionCookie  = "login_session"
	loginSessionTimeout = 5 * time.Minute
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	authService   Service
	login         *template.Template
	twoFactor     *template.Template
	signedIn      *template.Template
	secureCookies bool
}

func NewHandler(authService Service, secureCookies bool) *Handler {
	parse := func(page string) *template.Template {
		return template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return &Handler{
		authService:   authService,
		login:         parse("login.html"),
		twoFactor:     parse("two_factor.html"),
		signedIn:      parse("signed_in.html"),
		secureCookies: secureCookies,
	}
}

type loginPage struct {
	Title        string
	EmailOrLogin string
	Error        string
}

type twoFactorPage struct {
	Title  string
	Method string
	Prompt string
	Error  string
}

func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(accessTokenCookie); err == nil {
		render(w, h.signedIn, http.StatusOK, loginPage{Title: "Logged in"})
		return
	}
	render(w, h.login, http.StatusOK, loginPage{Title: "Log in"})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	emailOrLogin := strings.TrimSpace(r.PostForm.Get("email_or_login"))
	password := r.PostForm.Get("password")
	page := loginPage{Title: "Log in", EmailOrLogin: emailOrLogin}
	if emailOrLogin == "" || password == "" {
		page.Error = "Enter your email or username and your password."
		render(w, h.login, http.StatusBadRequest, page)
		return
	}

	result, err := h.authService.Login(r.Context(), emailOrLogin, password)
	if err != nil {
		status, message := loginFailure(err)
		page.Error = message
		render(w, h.login, status, page)
		return
	}

	if result.TwoFactorRequired() {
		http.SetCookie(w, &http.Cookie{
			Name:     loginSessionCookie,
			Value:    result.SessionToken,
			Path:     "/login",
			MaxAge:   int(loginSessionTimeout.Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
		render(w, h.twoFactor, http.StatusOK, newTwoFactorPage(result.TwoFactorMethod, ""))
		return
	}

	h.setAccessToken(w, result.AccessToken)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) HandleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	method := r.PostForm.Get("method")
	cookie, err := r.Cookie(loginSessionCookie)
	if err != nil || cookie.Value == "" {
		render(w, h.login, http.StatusUnauthorized, loginPage{Title: "Log in", Error: "Your login session expired. Please log in again."})
		return
	}

	result, err := h.authService.VerifyTwoFactor(r.Context(), cookie.Value, strings.TrimSpace(r.PostForm.Get("code")))
	if err != nil {
		if errors.Is(err, ErrInvalidSessionToken) {
			h.clearCookie(w, loginSessionCookie, "/login")
			render(w, h.login, http.StatusUnauthorized, loginPage{Title: "Log in", Error: "Your login session expired. Please log in again."})
			return
		}
		status, message := loginFailure(err)
		render(w, h.twoFactor, status, newTwoFactorPage(method, message))
		return
	}

	h.clearCookie(w, loginSessionCookie, "/login")
	h.setAccessToken(w, result.AccessToken)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, accessTokenCookie, "/")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func newTwoFactorPage(method, errMessage string) twoFactorPage {
	page := twoFactorPage{Title: "Verify", Method: method, Error: errMessage}
	switch method {
	case google2FAAuthMethod:
		page.Prompt = "Enter the 6-digit code from your authenticator app."
	case email2FAAuthMethod:
		page.Prompt = "We emailed you a 6-digit code. Enter it below."
	default:
		page.Prompt = "Enter your 6-digit verification code."
	}
	return page
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, ErrInvalid2FACode):
		return http.StatusUnauthorized, "Invalid verification code"
	case errors.Is(err, ErrUserNotVerified):
		return http.StatusForbidden, "Account not verified. Check your email for a verification code."
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, "Too many attempts. Please wait a few minutes and try again."
	case errors.Is(err, ErrLoginNotConfigured):
		return http.StatusServiceUnavailable, "Login is not available right now."
	}
	log.Printf("Error during login: %v", err)
	return http.StatusBadGateway, "We could not log you in. Please try again."
}

// setAccessToken keeps the cookie no longer than the token itself is valid.
func (h *Handler) setAccessToken(w http.ResponseWriter, token string) {
	cookie := &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if expiresAt, err := tokenExpiry(token); err == nil {
		cookie.Expires = expiresAt
	} else {
		log.Printf("Access token has no readable expiry, using a session cookie: %v", err)
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func render(w http.ResponseWriter, tmpl *template.Template, status int, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("Error rendering template %s: %v", tmpl.Name(), err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
