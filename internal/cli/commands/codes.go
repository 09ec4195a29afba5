package commands

import (
	"CodeVault/internal/cli/bootstrap"
	"CodeVault/internal/cli/repo"
	"CodeVault/internal/codec"
	"CodeVault/internal/config"
	"context"
	"fmt"
	"time"
)

type codesCmd struct{}

func (codesCmd) Name() string        { return "codes" }
func (codesCmd) Description() string { return "Показать сохранённые коды" }
func (codesCmd) Usage() string       { return "codes" }

func (codesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	r, done, err := bootstrap.OpenCodeRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	defer done()
	list, err := r.ListCodes(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет кодов")
		return nil
	}
	for _, sc := range list {
		fmt.Fprintf(Out, "- %s  id=%s  v%d  layers=%d/%d/%d  reveals=%d  created=%s\n",
			sc.Name, sc.ID, sc.Version,
			sc.Counts.Public, sc.Counts.Private, sc.Counts.Hidden,
			sc.Reveals, time.UnixMilli(sc.CreatedAt).UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

// resolvePayload принимает либо сам код, либо имя сохранённого кода.
func resolvePayload(ctx context.Context, r repo.CodeRepository, arg string) (string, error) {
	if codec.IsLayered(arg) {
		return arg, nil
	}
	sc, err := r.GetCodeByName(ctx, arg)
	if err != nil {
		return "", err
	}
	return sc.Payload, nil
}

func init() { RegisterCmd(codesCmd{}) }
