package commands

import (
	"CodeVault/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"CodeVault/internal/cli/api"
)

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Register on the server and store auth cookie" }
func (registerCmd) Usage() string       { return "register <login> <password>" }
func (registerCmd) Remote() bool        { return true }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	login := args[0]
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/register"
	resp, body, err := api.PostJSON(ctx, endpoint, RegisterRequest{Login: login, Password: args[1]}, "")
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
		fmt.Fprintln(Out, "Registered successfully")
		return nil
	case http.StatusConflict:
		return errors.New("login already in use")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}
}

func init() { RegisterCmd(registerCmd{}) }
