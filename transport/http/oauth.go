package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/codeventure/warden/core"
	"github.com/codeventure/warden/service"
)

const stateCookieName = "oauth_state"
const stateCookieTTL = 600 // seconds

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth runs the authorization-code flow against Google and turns the
// asserted identity into a Warden session. The identity provider cannot
// receive a JSON body, so the callback answers with a redirect: access token
// as a query parameter, refresh token as a cookie.
type GoogleOAuth struct {
	authService *service.SessionService
	config      *oauth2.Config
	frontendURL string
}

// NewGoogleOAuth creates the Google login handlers.
func NewGoogleOAuth(authService *service.SessionService, config *oauth2.Config, frontendURL string) *GoogleOAuth {
	return &GoogleOAuth{
		authService: authService,
		config:      config,
		frontendURL: frontendURL,
	}
}

// Redirect sends the browser to Google's consent screen with a random state.
func (g *GoogleOAuth) Redirect(c *gin.Context) {
	state := uuid.New().String()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieTTL, "/", "", true, true)

	c.Redirect(http.StatusTemporaryRedirect, g.config.AuthCodeURL(state))
}

// Callback exchanges the authorization code, resolves the Google identity and
// issues a session for it.
func (g *GoogleOAuth) Callback(c *gin.Context) {
	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	token, err := g.config.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "code exchange failed"})
		return
	}

	email, name, err := g.fetchIdentity(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity lookup failed"})
		return
	}

	pair, err := g.authService.LoginWithProvider(c.Request.Context(), email, name)
	if err != nil {
		if errors.Is(err, core.ErrRegistryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	setRefreshCookie(c, pair.RefreshToken, pair.RefreshTTL)

	redirect := fmt.Sprintf("%s?access_token=%s", g.frontendURL, url.QueryEscape(pair.AccessToken))
	c.Redirect(http.StatusSeeOther, redirect)
}

// fetchIdentity queries Google's userinfo endpoint with the exchanged token.
func (g *GoogleOAuth) fetchIdentity(ctx context.Context, token *oauth2.Token) (email, name string, err error) {
	resp, err := g.config.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return "", "", fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", "", fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return "", "", errors.New("userinfo without email")
	}

	return info.Email, info.Name, nil
}
