package commands

import (
	"CodeVault/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"CodeVault/internal/cli/api"
	fsrepo "CodeVault/internal/cli/repo/fs"
)

type dataResponse struct {
	Result string `json:"result"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show how the server sees this client" }
func (statusCmd) Usage() string       { return "status" }
func (statusCmd) Remote() bool        { return true }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/user/test"
	token, _ := (fsrepo.AuthFSStore{}).Load()
	resp, body, err := api.PostJSON(ctx, endpoint, struct{}{}, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var dr dataResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintln(Out, "Status:", dr.Result)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
