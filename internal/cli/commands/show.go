package commands

import (
	"CodeVault/internal/cli/bootstrap"
	"CodeVault/internal/cli/model/view"
	"CodeVault/internal/config"
	"CodeVault/internal/model"
	"CodeVault/internal/service"
	"context"
	"fmt"

	"go.uber.org/zap"
)

type showCmd struct{}

func (showCmd) Name() string { return "show" }
func (showCmd) Description() string {
	return "Раскрыть слои кода (PIN из --pin, hidden только с --advanced)"
}
func (showCmd) Usage() string { return "show <name|code>" }

func (showCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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

	svc := service.NewCodeService(r, zap.NewNop().Sugar())
	res, err := svc.Reveal(ctx, service.RevealRequest{
		Payload:      payload,
		Secret:       cfg.PIN,
		AdvancedMode: cfg.Advanced,
	})
	if err != nil {
		return err
	}
	printLayers(res.Container, res.Layers)
	fmt.Fprintf(Out, "Показов до этого: %d\n", res.UsageCount)
	return nil
}

func printLayers(c *model.Container, layers []model.UnlockedLayer) {
	fmt.Fprintf(Out, "%s (%s, v%d)\n", c.Name, c.ID, c.Version)
	for _, u := range layers {
		v := view.NewLayerView(u)
		fmt.Fprintf(Out, "  [%s] %s: %s\n", v.Type, v.Name, v.Content)
		if v.Description != "" {
			fmt.Fprintf(Out, "      %s\n", v.Description)
		}
		if v.Limits != "" {
			fmt.Fprintf(Out, "      limits: %s\n", v.Limits)
		}
	}
}

func init() { RegisterCmd(showCmd{}) }
