package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/postloom/postloom/configs"
	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/repository"
	"github.com/postloom/postloom/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	instagramAuthURL  = "https://www.instagram.com/oauth/authorize"
	instagramTokenURL = "https://api.instagram.com/oauth/access_token"
	xAuthURL          = "https://x.com/i/oauth2/authorize"
	xTokenURL         = "https://api.x.com/2/oauth2/token"
	linkedinAuthURL   = "https://www.linkedin.com/oauth/v2/authorization"
	linkedinTokenURL  = "https://www.linkedin.com/oauth/v2/accessToken"
	tiktokAuthURL     = "https://www.tiktok.com/v2/auth/authorize"
	tiktokTokenURL    = "https://open.tiktokapis.com/v2/oauth/token/"
)

type AccountService interface {
	GetAuthURL(ctx context.Context, platformName, state string) string
	ConnectCallback(ctx context.Context, userID int64, platformName, code string) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	LatestMetrics(ctx context.Context, userID, accountID int64) (*models.AccountMetrics, error)
	Disconnect(ctx context.Context, userID, accountID int64) error
}

type accountService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
	am  repository.AccountMetricsRepository
}

func NewAccountService(cfg config.Config, sa repository.SocialAccountRepository, am repository.AccountMetricsRepository) AccountService {
	return &accountService{
		cfg: cfg,
		sa:  sa,
		am:  am,
	}
}

func (s *accountService) GetAuthURL(ctx context.Context, platformName, state string) string {
	switch platformName {
	case string(platform.Instagram):
		params := url.Values{}
		params.Add("client_id", s.cfg.Instagram.ClientID)
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.Instagram.RedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", instagramAuthURL, params.Encode())

	case string(platform.X):
		params := url.Values{}
		params.Add("client_id", s.cfg.X.ClientID)
		params.Add("scope", "tweet.read tweet.write users.read offline.access")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.X.RedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", xAuthURL, params.Encode())

	case string(platform.LinkedIn):
		params := url.Values{}
		params.Add("client_id", s.cfg.LinkedIn.ClientID)
		params.Add("scope", "openid profile w_member_social")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.LinkedIn.RedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", linkedinAuthURL, params.Encode())

	case string(platform.YouTube):
		params := url.Values{}
		params.Add("client_id", s.cfg.YouTube.ClientID)
		params.Add("redirect_uri", s.cfg.YouTube.RedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/youtube.upload")
		params.Add("state", state)
		params.Add("access_type", "offline")
		return fmt.Sprintf("%s?%s", google.Endpoint.AuthURL, params.Encode())

	case string(platform.Tiktok):
		params := url.Values{}
		params.Add("client_key", s.cfg.Tiktok.ClientID)
		params.Add("scope", "user.info.basic,user.info.profile,video.publish,video.upload")
		params.Add("response_type", "code")
		params.Add("redirect_uri", s.cfg.Tiktok.RedirectURI)
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", tiktokAuthURL, params.Encode())

	default:
		return ""
	}
}

// ConnectCallback exchanges the OAuth code, resolves the platform-side
// profile, and upserts the account with encrypted tokens.
func (s *accountService) ConnectCallback(ctx context.Context, userID int64, platformName, code string) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	oauthConfig, err := s.oauthConfig(platformName)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	profile, err := fetchProfile(ctx, platformName, token.AccessToken)
	if err != nil {
		return err
	}

	sealedAccessToken, err := utils.SealToken(token.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	sealedRefreshToken := ""
	if token.RefreshToken != "" {
		sealedRefreshToken, err = utils.SealToken(token.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		expiresAt = &expiry
	}

	account := &models.SocialAccount{
		UserID:            userID,
		Platform:          platformName,
		PlatformAccountID: profile.ID,
		AccountName:       profile.Name,
		AccessToken:       sealedAccessToken,
		RefreshToken:      sealedRefreshToken,
		TokenExpiresAt:    expiresAt,
	}

	_, err = s.sa.Create(ctx, nil, account)
	return err
}

func (s *accountService) oauthConfig(platformName string) (*oauth2.Config, error) {
	switch platformName {
	case string(platform.Instagram):
		return &oauth2.Config{
			ClientID:     s.cfg.Instagram.ClientID,
			ClientSecret: s.cfg.Instagram.ClientSecret,
			RedirectURL:  s.cfg.Instagram.RedirectURI,
			Endpoint:     oauth2.Endpoint{AuthURL: instagramAuthURL, TokenURL: instagramTokenURL},
		}, nil
	case string(platform.X):
		return &oauth2.Config{
			ClientID:     s.cfg.X.ClientID,
			ClientSecret: s.cfg.X.ClientSecret,
			RedirectURL:  s.cfg.X.RedirectURI,
			Endpoint:     oauth2.Endpoint{AuthURL: xAuthURL, TokenURL: xTokenURL},
		}, nil
	case string(platform.LinkedIn):
		return &oauth2.Config{
			ClientID:     s.cfg.LinkedIn.ClientID,
			ClientSecret: s.cfg.LinkedIn.ClientSecret,
			RedirectURL:  s.cfg.LinkedIn.RedirectURI,
			Endpoint:     oauth2.Endpoint{AuthURL: linkedinAuthURL, TokenURL: linkedinTokenURL},
		}, nil
	case string(platform.YouTube):
		return &oauth2.Config{
			ClientID:     s.cfg.YouTube.ClientID,
			ClientSecret: s.cfg.YouTube.ClientSecret,
			RedirectURL:  s.cfg.YouTube.RedirectURI,
			Endpoint:     google.Endpoint,
		}, nil
	case string(platform.Tiktok):
		return &oauth2.Config{
			ClientID:     s.cfg.Tiktok.ClientID,
			ClientSecret: s.cfg.Tiktok.ClientSecret,
			RedirectURL:  s.cfg.Tiktok.RedirectURI,
			Endpoint:     oauth2.Endpoint{AuthURL: tiktokAuthURL, TokenURL: tiktokTokenURL},
		}, nil
	default:
		return nil, fmt.Errorf("platform %s: %w", platformName, platform.ErrUnsupportedPlatform)
	}
}

type platformProfile struct {
	ID   string
	Name string
}

// fetchProfile asks the platform who the token belongs to. Each platform has
// its own identity endpoint and envelope.
func fetchProfile(ctx context.Context, platformName, accessToken string) (*platformProfile, error) {
	var endpoint string
	switch platformName {
	case string(platform.Instagram):
		endpoint = "https://graph.instagram.com/me?fields=id,username"
	case string(platform.X):
		endpoint = "https://api.x.com/2/users/me"
	case string(platform.LinkedIn):
		endpoint = "https://api.linkedin.com/v2/userinfo"
	case string(platform.YouTube):
		endpoint = "https://www.googleapis.com/oauth2/v1/userinfo"
	case string(platform.Tiktok):
		endpoint = "https://open.tiktokapis.com/v2/user/info/?fields=open_id,display_name"
	default:
		return nil, fmt.Errorf("platform %s: %w", platformName, platform.ErrUnsupportedPlatform)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}

	switch platformName {
	case string(platform.X):
		var body struct {
			Data struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		return &platformProfile{ID: body.Data.ID, Name: body.Data.Name}, nil

	case string(platform.Tiktok):
		var body struct {
			Data struct {
				User struct {
					OpenID      string `json:"open_id"`
					DisplayName string `json:"display_name"`
				} `json:"user"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		return &platformProfile{ID: body.Data.User.OpenID, Name: body.Data.User.DisplayName}, nil

	case string(platform.LinkedIn):
		var body struct {
			Sub  string `json:"sub"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		return &platformProfile{ID: body.Sub, Name: body.Name}, nil

	default:
		var body struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		name := body.Name
		if name == "" {
			name = body.Username
		}
		return &platformProfile{ID: body.ID, Name: name}, nil
	}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting social accounts")
	}

	return accounts, nil
}

// Disconnect wipes the stored tokens and marks the account disconnected. The
// row stays so existing delivery history and metrics keep their account.
func (s *accountService) LatestMetrics(ctx context.Context, userID, accountID int64) (*models.AccountMetrics, error) {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Social account doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	snapshot, err := s.am.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Error getting account metrics")
	}

	return snapshot, nil
}

func (s *accountService) Disconnect(ctx context.Context, userID, accountID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if accountID == 0 {
		err = errors.New("AccountID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Social account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.sa.Disconnect(ctx, accountID)
	if err != nil {
		return fmt.Errorf("Error disconnecting account")
	}

	return nil
}
