package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/postloom/postloom/configs"
	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/repository"
	"github.com/postloom/postloom/internal/transfer"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

type AuthService interface {
	LoginURL(state string) string
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) googleConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func (s *authService) LoginURL(state string) string {
	return s.googleConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// LoginCallback exchanges the Google code, then finds or creates the user.
// An existing user gets their name and avatar refreshed so the profile
// tracks what Google reports.
func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	oc := s.googleConfig()
	if oc.ClientID == "" || oc.ClientSecret == "" || oc.RedirectURL == "" {
		err := errors.New("google oauth configuration is incomplete")
		slog.Info(err.Error())
		return 0, err
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, fmt.Errorf("exchanging authorization code: %w", err)
	}

	profile, err := fetchGoogleProfile(oc.Client(ctx, token))
	if err != nil {
		return 0, err
	}

	user, err := s.u.GetByGoogleEmail(ctx, profile.Email)
	if err != nil {
		return 0, err
	}

	if user == nil || user.GoogleID == "" {
		return s.u.Create(ctx, nil, &models.User{
			GoogleID:  profile.ID,
			Email:     profile.Email,
			Name:      profile.Name,
			AvatarURL: profile.Picture,
		})
	}

	if user.Name != profile.Name || user.AvatarURL != profile.Picture {
		user.Name = profile.Name
		user.AvatarURL = profile.Picture
		if err := s.u.UpdateProfile(ctx, user); err != nil {
			// Stale profile data is not worth failing the login over.
			slog.Info(err.Error())
		}
	}

	return user.ID, nil
}

func fetchGoogleProfile(client *http.Client) (*transfer.GoogleUserInfo, error) {
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("fetching google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google profile request returned %d", resp.StatusCode)
	}

	var profile transfer.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("decoding google profile: %w", err)
	}
	return &profile, nil
}
