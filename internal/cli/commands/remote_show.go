package commands

import (
	"CodeVault/internal/cli/api"
	"CodeVault/internal/cli/bootstrap"
	fsrepo "CodeVault/internal/cli/repo/fs"
	"CodeVault/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type remoteRevealRequest struct {
	Payload  string `json:"payload"`
	PIN      string `json:"pin,omitempty"`
	Advanced bool   `json:"advanced,omitempty"`
}

type remoteLayer struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Data   *string `json:"data"`
}

type remoteReveal struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	UsageCount int           `json:"usage_count"`
	Layers     []remoteLayer `json:"layers"`
}

type remoteShowCmd struct{}

func (remoteShowCmd) Name() string { return "remote-show" }
func (remoteShowCmd) Remote() bool { return true }
func (remoteShowCmd) Description() string {
	return "Раскрыть код на сервере (учитывает серверный счётчик показов)"
}
func (remoteShowCmd) Usage() string { return "remote-show <name|code>" }

func (remoteShowCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	r, done, err := bootstrap.OpenCodeRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	defer done()
	payload, err := resolvePayload(ctx, r, args[0])
	if err != nil {
		return err
	}

	token, _ := (fsrepo.AuthFSStore{}).Load()
	endpoint := strings.TrimRight(cfg.ServerURL, "/") + "/api/codes/reveal"
	resp, body, err := api.PostJSON(ctx, endpoint, remoteRevealRequest{Payload: payload, PIN: cfg.PIN, Advanced: cfg.Advanced}, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var rr remoteReveal
	if err := json.Unmarshal(body, &rr); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Fprintf(Out, "%s (%s)\n", rr.Name, rr.ID)
	for _, l := range rr.Layers {
		content := "<" + l.Status + ">"
		if l.Data != nil {
			content = *l.Data
		}
		fmt.Fprintf(Out, "  [%s] %s: %s\n", l.Type, l.Name, content)
	}
	fmt.Fprintf(Out, "Показов до этого: %d\n", rr.UsageCount)
	return nil
}

func init() { RegisterCmd(remoteShowCmd{}) }
