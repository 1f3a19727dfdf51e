package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"battlescore/app_error"
	"battlescore/config"
	"battlescore/repository"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type OauthState struct {
	Verifier string
	Timeout  int64
	UserId   int
	Redirect string
}

// OauthService links external accounts to existing users. Only Discord is
// supported for now; the provider map keeps the door open.
type OauthService struct {
	Config          map[repository.Provider]*oauth2.Config
	mu              sync.Mutex
	stateMap        map[string]OauthState
	oauthRepository *repository.OauthRepository
}

type DiscordUserResponse struct {
	Id            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Locale        string `json:"locale"`
}

func NewOauthService(db *gorm.DB) *OauthService {
	return &OauthService{
		Config: map[repository.Provider]*oauth2.Config{
			repository.ProviderDiscord: {
				ClientID:     config.Env().DiscordClientID,
				ClientSecret: config.Env().DiscordClientSecret,
				Scopes:       []string{"identify"},
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://discord.com/oauth2/authorize",
					TokenURL: "https://discord.com/api/oauth2/token",
				},
			},
		},
		stateMap:        make(map[string]OauthState),
		oauthRepository: repository.NewOauthRepository(db),
	}
}

func (e *OauthService) newVerifier(userId int, lastUrl string) (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// clean up expired verifiers
	for state, v := range e.stateMap {
		if v.Timeout < time.Now().Unix() {
			delete(e.stateMap, state)
		}
	}
	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()
	e.stateMap[state] = OauthState{
		Verifier: verifier,
		Timeout:  time.Now().Add(1 * time.Minute).Unix(),
		UserId:   userId,
		Redirect: lastUrl,
	}
	return state, verifier
}

// GetOauthProviderUrl builds the authorization URL the user is redirected to
// when linking an account.
func (e *OauthService) GetOauthProviderUrl(userId int, provider repository.Provider, lastUrl string, redirectUrl string) (string, error) {
	oauthConfig, ok := e.Config[provider]
	if !ok {
		return "", app_error.New(fmt.Errorf("unknown oauth provider %s", provider), http.StatusBadRequest)
	}
	state, verifier := e.newVerifier(userId, lastUrl)
	oauthConfig.RedirectURL = redirectUrl
	return oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", oauth2.S256ChallengeFromVerifier(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// VerifyDiscord exchanges the callback code, fetches the Discord identity and
// stores the linked account. Returns the consumed state for the redirect.
func (e *OauthService) VerifyDiscord(ctx context.Context, state string, code string) (*OauthState, error) {
	e.mu.Lock()
	authState, ok := e.stateMap[state]
	delete(e.stateMap, state)
	e.mu.Unlock()
	if !ok {
		return nil, app_error.New(fmt.Errorf("oauth state is unknown or expired"), http.StatusBadRequest)
	}

	oauthConfig := e.Config[repository.ProviderDiscord]
	token, err := oauthConfig.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", authState.Verifier))
	if err != nil {
		return nil, err
	}
	client := oauthConfig.Client(ctx, token)
	response, err := client.Get("https://discord.com/api/users/@me")
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	discordUser := &DiscordUserResponse{}
	if err := json.NewDecoder(response.Body).Decode(discordUser); err != nil {
		return nil, err
	}

	existing, err := e.oauthRepository.GetOauthByProviderAndAccountId(repository.ProviderDiscord, discordUser.Id)
	if err == nil && existing.UserId != authState.UserId {
		return nil, app_error.New(fmt.Errorf("this discord account is already linked to another user"), http.StatusConflict)
	}

	_, err = e.oauthRepository.SaveOauth(&repository.Oauth{
		UserId:       authState.UserId,
		Provider:     repository.ProviderDiscord,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		AccountId:    discordUser.Id,
		Name:         discordUser.Username,
	})
	if err != nil {
		return nil, err
	}
	return &authState, nil
}

func (e *OauthService) Unlink(userId int, provider repository.Provider) error {
	return e.oauthRepository.DeleteOauth(userId, provider)
}
