package commands

import (
	"CodeVault/internal/cli/bootstrap"
	"CodeVault/internal/cli/model/view"
	"CodeVault/internal/config"
	"CodeVault/internal/service"
	"context"
	"fmt"

	"go.uber.org/zap"
)

type inspectCmd struct{}

func (inspectCmd) Name() string        { return "inspect" }
func (inspectCmd) Description() string { return "Показать структуру кода без расшифровки" }
func (inspectCmd) Usage() string       { return "inspect <name|code>" }

func (inspectCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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

	insp, err := service.NewCodeService(r, zap.NewNop().Sugar()).Inspect(ctx, payload)
	if err != nil {
		return err
	}
	c := insp.Container
	fmt.Fprintf(Out, "%s (%s, v%d)\n", c.Name, c.ID, c.Version)
	fmt.Fprintf(Out, "  layers: %d public, %d private, %d hidden\n", insp.Counts.Public, insp.Counts.Private, insp.Counts.Hidden)
	if c.Expiry != nil {
		fmt.Fprintf(Out, "  expiry: %s\n", view.FormatLimits(c.Expiry.Limits()))
	}
	if insp.Reveals != nil {
		fmt.Fprintf(Out, "  reveals: %d\n", *insp.Reveals)
	}
	for _, l := range c.Layers {
		fmt.Fprintf(Out, "  - %s [%s] %s\n", l.ID, l.Class, l.Name)
	}
	return nil
}

func init() { RegisterCmd(inspectCmd{}) }
