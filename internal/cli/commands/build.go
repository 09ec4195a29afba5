package commands

import (
	"CodeVault/internal/cli/bootstrap"
	"CodeVault/internal/config"
	"CodeVault/internal/model"
	"CodeVault/internal/service"
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

type buildCmd struct{}

func (buildCmd) Name() string { return "build" }
func (buildCmd) Description() string {
	return "Собрать многослойный код и сохранить его под именем"
}
func (buildCmd) Usage() string {
	return "build [-expires <dur>] [-uses <n>] [-legacy] <name> <type>:<layer>=<data>..."
}

func (c buildCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	expires := fs.Duration("expires", 0, "срок жизни кода")
	uses := fs.Int("uses", 0, "сколько раз код можно показать")
	legacy := fs.Bool("legacy", false, "старый формат без проверки целостности")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	rest := fs.Args()
	if len(rest) < 2 || *expires < 0 || *uses < 0 {
		return ErrUsage
	}

	layers := make([]service.LayerConfig, 0, len(rest)-1)
	for _, spec := range rest[1:] {
		l, err := parseLayerSpec(spec)
		if err != nil {
			return err
		}
		layers = append(layers, l)
	}

	req := service.BuildRequest{
		Name:   rest[0],
		Secret: cfg.PIN,
		Layers: layers,
		Expiry: buildExpiry(*expires, *uses, time.Now()),
	}
	if *legacy {
		req.Version = model.VersionLegacy
	}

	repo, done, err := bootstrap.OpenCodeRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	defer done()

	svc := service.NewCodeService(repo, zap.NewNop().Sugar())
	ct, payload, err := svc.Build(ctx, req)
	if err != nil {
		return err
	}
	if _, err := repo.SaveCode(ctx, rest[0], payload); err != nil {
		return err
	}
	counts := ct.Counts()
	fmt.Fprintln(Out, "Created:")
	fmt.Fprintf(Out, "  id:     %s\n", ct.ID)
	fmt.Fprintf(Out, "  name:   %s\n", ct.Name)
	fmt.Fprintf(Out, "  layers: %d public, %d private, %d hidden\n", counts.Public, counts.Private, counts.Hidden)
	fmt.Fprintf(Out, "  code:   %s\n", payload)
	return nil
}

// parseLayerSpec разбирает "<type>:<layer>=<data>".
func parseLayerSpec(spec string) (service.LayerConfig, error) {
	head, data, ok := strings.Cut(spec, "=")
	if !ok {
		return service.LayerConfig{}, fmt.Errorf("invalid layer %q: expected <type>:<layer>=<data>", spec)
	}
	typ, name, ok := strings.Cut(head, ":")
	if !ok || name == "" {
		return service.LayerConfig{}, fmt.Errorf("invalid layer %q: expected <type>:<layer>=<data>", spec)
	}
	class, err := model.ParseClass(typ)
	if err != nil {
		return service.LayerConfig{}, err
	}
	return service.LayerConfig{Class: class, Name: name, Data: data}, nil
}

func buildExpiry(ttl time.Duration, uses int, now time.Time) *model.Expiry {
	switch {
	case ttl > 0 && uses > 0:
		return &model.Expiry{Mode: model.ExpiryBoth, ExpiresAt: now.Add(ttl).UnixMilli(), UsageLimit: uses}
	case ttl > 0:
		return &model.Expiry{Mode: model.ExpiryTime, ExpiresAt: now.Add(ttl).UnixMilli()}
	case uses > 0:
		return &model.Expiry{Mode: model.ExpiryUsage, UsageLimit: uses}
	default:
		return nil
	}
}

func init() { RegisterCmd(buildCmd{}) }
