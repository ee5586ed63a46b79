package v1

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/config"
	"github.com/technest/technest-api/internal/domain"
)

const (
	providerGoogle = "google"
	providerGitHub = "github"

	stateCookieName = "technest_oauth_state"
	stateCookieTTL  = 10 * time.Minute

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

var (
	errStateMismatch = errors.New("oauth state does not match")
	errMissingCode   = errors.New("missing authorization code")
)

type fetchUserFunc func(ctx context.Context, client *http.Client) (domain.FederatedUser, error)

type oauthProvider struct {
	config    *oauth2.Config
	fetchUser fetchUserFunc
}

// OAuthHandler signs users in through an external identity provider and
// answers with a regular session token.
type OAuthHandler struct {
	auth      *AuthHandler
	cookie    *securecookie.SecureCookie
	providers map[string]*oauthProvider
}

func NewOAuthHandler(conf *config.OAuthConfig, auth *AuthHandler, cookie *securecookie.SecureCookie) *OAuthHandler {
	h := &OAuthHandler{
		auth:      auth,
		cookie:    cookie,
		providers: map[string]*oauthProvider{},
	}

	redirect := strings.TrimRight(conf.RedirectBaseURL, "/")

	if conf.Google.Enabled() {
		h.providers[providerGoogle] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     conf.Google.ClientID,
				ClientSecret: conf.Google.ClientSecret,
				Endpoint:     endpoints.Google,
				RedirectURL:  redirect + "/" + providerGoogle + "/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			fetchUser: fetchGoogleUser(googleUserInfoURL),
		}
	}

	if conf.GitHub.Enabled() {
		h.providers[providerGitHub] = &oauthProvider{
			config: &oauth2.Config{
				ClientID:     conf.GitHub.ClientID,
				ClientSecret: conf.GitHub.ClientSecret,
				Endpoint:     endpoints.GitHub,
				RedirectURL:  redirect + "/" + providerGitHub + "/callback",
				Scopes:       []string{"read:user", "user:email"},
			},
			fetchUser: fetchGitHubUser(githubUserURL, githubEmailsURL),
		}
	}

	return h
}

// HandleOAuthStart godoc
// @Summary      Redirect to an identity provider
// @Tags         auth
// @Param        provider  path  string  true  "google or github"
// @Success      307
// @Failure      404      {object}   response.Err
// @Router       /auth/oauth/{provider} [get]
func (h *OAuthHandler) HandleOAuthStart(ctx *gin.Context) {
	name := ctx.Param("provider")
	provider, ok := h.providers[name]
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("provider", "provider", name))
		return
	}

	state := hex.EncodeToString(securecookie.GenerateRandomKey(16))
	encoded, err := h.cookie.Encode(stateCookieName, state)
	if err != nil {
		err = fmt.Errorf("v1.HandleOAuthStart -> h.cookie.Encode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(stateCookieName, encoded, int(stateCookieTTL.Seconds()), "/", "", ctx.Request.TLS != nil, true)
	ctx.Redirect(http.StatusTemporaryRedirect, provider.config.AuthCodeURL(state))
}

// HandleOAuthCallback godoc
// @Summary      Finish signing in with an identity provider
// @Tags         auth
// @Produce      json
// @Param        provider  path   string  true  "google or github"
// @Param        code      query  string  true  "authorization code"
// @Param        state     query  string  true  "state issued by the start endpoint"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) HandleOAuthCallback(ctx *gin.Context) {
	name := ctx.Param("provider")
	provider, ok := h.providers[name]
	if !ok {
		response.RenderErr(ctx, response.ErrNotFound("provider", "provider", name))
		return
	}

	if err := h.checkState(ctx); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	ctx.SetCookie(stateCookieName, "", -1, "/", "", ctx.Request.TLS != nil, true)

	code := ctx.Query("code")
	if code == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errMissingCode))
		return
	}

	token, err := provider.config.Exchange(ctx.Request.Context(), code)
	if err != nil {
		err = fmt.Errorf("v1.HandleOAuthCallback -> provider.config.Exchange -> %w", err)
		response.RenderErr(ctx, response.ErrUnauthenticated(err))
		return
	}

	client := provider.config.Client(ctx.Request.Context(), token)
	fu, err := provider.fetchUser(ctx.Request.Context(), client)
	if err != nil {
		err = fmt.Errorf("v1.HandleOAuthCallback -> provider.fetchUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	fu.Provider = name

	user, err := h.auth.svc.FederatedLogin(ctx.Request.Context(), fu)
	if err != nil {
		err = fmt.Errorf("v1.HandleOAuthCallback -> h.auth.svc.FederatedLogin -> %w", err)
		response.RenderErr(ctx, response.FromServiceErr(err, "user"))
		return
	}

	h.auth.renderSession(ctx, user)
}

func (h *OAuthHandler) checkState(ctx *gin.Context) error {
	encoded, err := ctx.Cookie(stateCookieName)
	if err != nil {
		return errStateMismatch
	}

	var state string
	if err := h.cookie.Decode(stateCookieName, encoded, &state); err != nil {
		return errStateMismatch
	}

	if state == "" || state != ctx.Query("state") {
		return errStateMismatch
	}

	return nil
}

func fetchGoogleUser(userInfoURL string) fetchUserFunc {
	return func(ctx context.Context, client *http.Client) (domain.FederatedUser, error) {
		var info struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			Name          string `json:"name"`
			Picture       string `json:"picture"`
		}
		if err := getJSON(ctx, client, userInfoURL, &info); err != nil {
			return domain.FederatedUser{}, err
		}

		if !info.EmailVerified {
			info.Email = ""
		}

		return domain.FederatedUser{
			Email: info.Email,
			Name:  info.Name,
			Image: info.Picture,
		}, nil
	}
}

// fetchGitHubUser falls back to the primary verified address when the profile
// email is private.
func fetchGitHubUser(userURL, emailsURL string) fetchUserFunc {
	return func(ctx context.Context, client *http.Client) (domain.FederatedUser, error) {
		var info struct {
			Login     string `json:"login"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := getJSON(ctx, client, userURL, &info); err != nil {
			return domain.FederatedUser{}, err
		}

		if info.Email == "" {
			var emails []struct {
				Email    string `json:"email"`
				Primary  bool   `json:"primary"`
				Verified bool   `json:"verified"`
			}
			if err := getJSON(ctx, client, emailsURL, &emails); err != nil {
				return domain.FederatedUser{}, err
			}

			for _, e := range emails {
				if e.Primary && e.Verified {
					info.Email = e.Email
					break
				}
			}
		}

		name := info.Name
		if name == "" {
			name = info.Login
		}

		return domain.FederatedUser{
			Email: info.Email,
			Name:  name,
			Image: info.AvatarURL,
		}, nil
	}
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do -> %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("json.Decode -> %w", err)
	}

	return nil
}
