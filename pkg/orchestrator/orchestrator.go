package orchestrator

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/glorpus-work/woezel/internal/logger"
	"github.com/glorpus-work/woezel/pkg/archive"
	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/pkg/hooks"
	"github.com/glorpus-work/woezel/pkg/installed"
	"github.com/glorpus-work/woezel/pkg/model"
	"github.com/google/uuid"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Install installs specs and, breadth first, every dependency they declare.
// A package is processed at most once per run. The first failure aborts the
// run with an *InstallError; nothing installed before it is rolled back.
func (o *Orchestrator) Install(ctx context.Context, specs []string, opts InstallOptions) error {
	if err := o.validate(opts); err != nil {
		return err
	}

	log := logger.With(logger.Fields{"run": uuid.NewString()})
	log.Info("installing to", "path", opts.InstallRoot)

	queue := append([]string(nil), specs...)
	done := make(map[string]bool, len(specs))

	for len(queue) > 0 {
		log.Debug("queue", "pending", queue)
		spec := queue[0]
		queue = queue[1:]
		if done[spec] {
			continue
		}

		deps, err := o.installOne(ctx, log, spec, opts)
		if err != nil {
			emit(o.Hooks, Event{Phase: "error", ID: spec, Msg: err.Error()})
			return &InstallError{Package: spec, Err: err}
		}
		done[spec] = true

		if len(deps) > 0 {
			emit(o.Hooks, Event{Phase: "dependencies", ID: spec, Msg: strings.Join(deps, ", ")})
			queue = append(queue, deps...)
		}
	}

	emit(o.Hooks, Event{Phase: "done"})
	return nil
}

func (o *Orchestrator) validate(opts InstallOptions) error {
	switch {
	case o.Index == nil:
		return fmt.Errorf("metadata fetcher is not configured")
	case o.Transport == nil:
		return fmt.Errorf("transport is not configured")
	case o.Archive == nil:
		return fmt.Errorf("archive installer is not configured")
	case opts.InstallRoot == "":
		return fmt.Errorf("install root is not set")
	}
	return nil
}

func (o *Orchestrator) installOne(ctx context.Context, log *slog.Logger, spec string, opts InstallOptions) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log = log.With("package", spec)

	pkgDir, err := installed.Dir(opts.InstallRoot, spec)
	if err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: "resolving", ID: spec})
	meta, err := o.Index.GetMetadata(ctx, spec)
	if err != nil {
		return nil, err
	}
	latest := meta.LatestVersion()

	rec, exists, err := installed.Read(opts.InstallRoot, spec)
	if err != nil {
		return nil, err
	}

	previous := ""
	if exists {
		previous = rec.Version
		switch {
		case !rec.HasVersion():
			log.Info("no version file found, reinstalling")
		case rec.Version == latest && !opts.ForceReinstall:
			return nil, errors.ErrAlreadyLatest
		case rec.Version == latest:
			log.Info("reinstalling", "version", latest)
		}
	} else {
		log.Debug("package not yet installed")
	}

	release, err := meta.Artifact(latest)
	if err != nil {
		return nil, err
	}

	if exists && rec.HasVersion() && rec.Version != latest {
		emit(o.Hooks, Event{Phase: "removing", ID: spec, Msg: rec.Version})
		log.Info("removing previous rev.", "version", rec.Version)
		if err := installed.Purge(opts.InstallRoot, spec); err != nil {
			return nil, err
		}
	}

	transition := model.ClassifyTransition(previous, latest)
	hctx := hooks.HookContext{
		PackageName:    spec,
		PackageVersion: latest,
		PackagePath:    pkgDir,
		InstallPath:    opts.InstallRoot,
		Vars: map[string]interface{}{
			"previousVersion": previous,
			"transition":      string(transition),
		},
	}
	if err := o.runHook(ctx, hooks.PreInstall, hctx); err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: "installing", ID: spec, Msg: latest})
	log.Info("installing", "version", latest, "transition", transition, "url", release.URL)

	res, err := o.fetchAndExtract(ctx, release.URL, hctx.PackagePath)
	if err != nil {
		return nil, err
	}
	if err := installed.Write(opts.InstallRoot, spec, latest); err != nil {
		return nil, err
	}

	if err := o.runHook(ctx, hooks.PostInstall, hctx); err != nil {
		log.Warn("post-install hook failed", "error", err)
	}

	deps, err := ParseDeps(res.Deps)
	if err != nil {
		return nil, err
	}
	logger.Success(fmt.Sprintf("installed %s rev. %s", spec, latest), logger.Fields{"files": res.Files})
	return deps, nil
}

func (o *Orchestrator) fetchAndExtract(ctx context.Context, url, prefix string) (res archive.Result, err error) {
	body, err := o.Transport.Open(ctx, url)
	if err != nil {
		return res, err
	}
	defer body.Close()
	return o.Archive.InstallArchive(ctx, body, prefix)
}

func (o *Orchestrator) runHook(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error {
	if o.Scripts == nil || !o.Scripts.HasScript(hookType) {
		return nil
	}
	return o.Scripts.Execute(ctx, hookType, hctx)
}

// ParseDeps splits a captured requires.txt into package names. Blank lines
// and # comments are dropped. A line that is not a valid package name fails
// the whole list.
func ParseDeps(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !utf8.Valid(data) {
		return nil, errors.Kindf(errors.ErrProtocol, "dependency list is not valid UTF-8")
	}

	var deps []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := model.ValidatePackageName(line); err != nil {
			return nil, fmt.Errorf("dependency list: %w", err)
		}
		deps = append(deps, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Join(errors.ErrProtocol, err)
	}
	return deps, nil
}
