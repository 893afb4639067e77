package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"gorm.io/gorm"

	"github.com/inkstream/inkstream/config"
	"github.com/inkstream/inkstream/middleware"
	"github.com/inkstream/inkstream/models"
	"github.com/inkstream/inkstream/utils"
)

const tokenDuration = 72 * time.Hour

// AuthController handles signup, login, logout, password reset and the GitHub
// OAuth provider.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account and logs it in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password" binding:"required"`
		Confirm  string `form:"confirm" json:"confirm" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if l := len([]rune(req.Username)); l < 2 || l > 30 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 2-30 characters")
		return
	}
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username may contain letters, digits, '-' and '_'")
		return
	}
	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40003, "passwords do not match")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 64 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be 6-64 characters")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	a.issueSession(ctx, user)
}

// LoginPage returns the login form context. The next parameter names the page
// to return to after authenticating.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"next": ctx.Query("next"),
	})
}

// Login verifies credentials and issues a session token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	a.issueSession(ctx, user)
}

// Logout invalidates the token by blacklisting it until expiration and clears
// the session cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := sessionToken(ctx)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "missing token")
		return
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenDuration)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}
	utils.BlacklistToken(token, expiresAt)

	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own profile data.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40115, "unauthorized")
		return
	}
	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40407, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": userResponse(user)})
}

// PasswordResetRequest emails a short-lived numeric code to the account address.
// The response does not reveal whether the address is registered.
func (a *AuthController) PasswordResetRequest(ctx *gin.Context) {
	var req struct {
		Email string `form:"email" json:"email" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err == nil {
		code := utils.GenerateVerificationCode(6)
		subject := "Inkstream password reset"
		body := fmt.Sprintf("Your password reset code is: %s\nIt is valid for 10 minutes.", code)
		if err := utils.SendMail(email, subject, body); err == nil {
			utils.SaveCode(email, code, 10*time.Minute)
		} else if utils.Sugar != nil {
			utils.Sugar.Warnf("password reset mail failed for %s: %v", email, err)
		}
	}

	utils.Success(ctx, gin.H{"message": "if the address is registered, a code has been sent"})
}

// PasswordResetConfirm consumes the emailed code and sets a new password.
func (a *AuthController) PasswordResetConfirm(ctx *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" binding:"required"`
		Code     string `form:"code" json:"code" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	if len(req.Password) < 6 || len(req.Password) > 64 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "password must be 6-64 characters")
		return
	}
	if !utils.VerifyAndConsumeCode(email, strings.TrimSpace(req.Code)) {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid or expired code")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40408, "user not found")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password updated"})
}

// OAuthRedirect sends the browser to GitHub's authorization page with a
// single-use state token.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	conf, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, err.Error())
		return
	}
	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)
	ctx.Redirect(http.StatusFound, conf.AuthCodeURL(state))
}

// OAuthCallback finishes the GitHub flow: validates state, exchanges the code,
// provisions the account and issues a session.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	state := ctx.Query("state")
	code := ctx.Query("code")
	if state == "" || code == "" || !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid oauth state")
		return
	}

	conf, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, err.Error())
		return
	}
	token, err := conf.Exchange(ctx.Request.Context(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50260, "oauth exchange failed")
		return
	}

	ghUser, err := fetchGitHubUser(ctx, conf, token)
	if err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50261, "failed to fetch oauth user")
		return
	}

	user, err := a.findOrCreateOAuthUser(ghUser)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to provision user")
		return
	}

	sessionJWT, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to generate token")
		return
	}
	ctx.SetCookie(middleware.TokenCookieName, sessionJWT, int(tokenDuration.Seconds()), "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return nil, errors.New("github oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  cfg.OAuthRedirectBase + "/auth/oauth/github/callback",
		Scopes:       []string{"read:user"},
	}, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func fetchGitHubUser(ctx *gin.Context, conf *oauth2.Config, token *oauth2.Token) (*githubUser, error) {
	client := conf.Client(ctx.Request.Context(), token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}
	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	if u.Login == "" {
		return nil, errors.New("github user has no login")
	}
	return &u, nil
}

func (a *AuthController) findOrCreateOAuthUser(gh *githubUser) (*models.User, error) {
	providerID := fmt.Sprintf("%d", gh.ID)

	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "github", providerID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Username:   a.ensureUniqueUsername(gh.Login),
		Email:      gh.Email,
		Provider:   "github",
		ProviderID: providerID,
		AvatarURL:  gh.AvatarURL,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureUniqueUsername appends a numeric suffix until the name is free.
func (a *AuthController) ensureUniqueUsername(base string) string {
	candidate := base
	for i := 1; ; i++ {
		var existing models.User
		if err := a.db.Where("username = ?", candidate).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (a *AuthController) issueSession(ctx *gin.Context, user models.User) {
	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to generate token")
		return
	}
	ctx.SetCookie(middleware.TokenCookieName, token, int(tokenDuration.Seconds()), "/", "", false, true)
	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
		"next":  ctx.Query("next"),
	})
}

func sessionToken(ctx *gin.Context) string {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := ctx.Cookie(middleware.TokenCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}

func validUsername(s string) bool {
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}
