package commands

import (
	"CodeVault/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"CodeVault/internal/cli/api"
	"CodeVault/internal/cli/bootstrap"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> <password>" }
func (loginCmd) Remote() bool        { return true }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	password := args[1]
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/login"
	resp, body, err := api.PostJSON(ctx, endpoint, LoginRequest{Login: login, Password: password}, "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		if err := api.PersistAuthFromResponse(resp, login); err != nil {
			return fmt.Errorf("saving auth: %w", err)
		}
		if err := prepareUserStore(cfg); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Logged in successfully")
		return nil
	case http.StatusUnauthorized:
		return errors.New("invalid login or password")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
}

// prepareUserStore создаёт локальную базу кодов пользователя сразу после входа.
func prepareUserStore(cfg *config.Config) error {
	_, done, err := bootstrap.OpenCodeRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	return done()
}

func init() { RegisterCmd(loginCmd{}) }
