package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	srvipc "github.com/adrianmross/region-select/internal/ipc"
	"github.com/adrianmross/region-select/pkg/config"
	ipcmsg "github.com/adrianmross/region-select/pkg/ipc"
	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
)

// Service holds daemon state. The dataset is loaded once in NewService and
// only read afterwards; mu guards the config, which "use" and "clear" write.
type Service struct {
	cfgPath string
	ds      *regions.Dataset
	log     *slog.Logger

	mu  sync.Mutex
	cfg config.Config
}

// NewService loads config and the dataset it names.
func NewService(ctx context.Context, cfgPath string, log *slog.Logger) (*Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	ds, err := regions.Load(ctx, cfg.Options.DatasetSource, cfg.Options.LoadOptions())
	if err != nil {
		return nil, err
	}
	return newService(cfgPath, cfg, ds, log), nil
}

func newService(cfgPath string, cfg config.Config, ds *regions.Dataset, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfgPath: cfgPath, cfg: cfg, ds: ds, log: log}
}

// Serve runs the IPC server until ctx is cancelled.
func (s *Service) Serve(ctx context.Context, ready chan<- struct{}) error {
	s.log.Info("daemon listening", "socket", s.cfg.Options.SocketPath, "regions", s.ds.Len())
	return srvipc.Serve(ctx, s.cfg.Options.SocketPath, s.handle, s.log, ready)
}

// SocketPath returns the configured socket.
func (s *Service) SocketPath() string { return s.cfg.Options.SocketPath }

func (s *Service) handle(req ipcmsg.Request) (interface{}, error) {
	switch req.Method {
	case "regions":
		return s.ds.Regions(), nil
	case "sub_regions":
		return s.subRegions(req.Region)
	case "options":
		return selector.SecondaryOptions(s.ds, s.settings().Placeholder, req.Region), nil
	case "current":
		return s.current()
	case "use":
		return s.use(req.Region, req.SubRegion)
	case "clear":
		return s.clear()
	case "export":
		return s.export(req.Format)
	default:
		return nil, srvipc.ErrNotImplemented
	}
}

func (s *Service) settings() selector.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Options.Settings().WithDefaults()
}

func (s *Service) subRegions(region string) (interface{}, error) {
	subs, ok := s.ds.SubRegions(region)
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrRegionNotFound, region)
	}
	return subs, nil
}

func (s *Service) current() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Selection.Region == "" {
		return nil, config.ErrNoSelection
	}
	return s.cfg.Selection, nil
}

func (s *Service) use(region, subRegion string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	if err := next.SetSelection(s.ds, region, subRegion); err != nil {
		return nil, err
	}
	if err := config.Save(s.cfgPath, next); err != nil {
		return nil, err
	}
	s.cfg = next
	return s.cfg.Selection, nil
}

func (s *Service) clear() (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	if err := next.ClearSelection(); err != nil {
		return nil, err
	}
	if err := config.Save(s.cfgPath, next); err != nil {
		return nil, err
	}
	s.cfg = next
	return map[string]bool{"cleared": true}, nil
}

func (s *Service) export(format string) (interface{}, error) {
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	sel := cur.(config.Selection)

	switch format {
	case "env":
		return map[string][]string{"env": ExportEnv(sel)}, nil
	case "json", "":
		return sel, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportEnv renders a selection as environment assignments a shell can eval.
func ExportEnv(sel config.Selection) []string {
	lines := []string{fmt.Sprintf("REGION=%s", ShellQuote(sel.Region))}
	if sel.SubRegion != "" {
		lines = append(lines, fmt.Sprintf("SUB_REGION=%s", ShellQuote(sel.SubRegion)))
	}
	return lines
}

// ShellQuote single-quotes v unless it is made of characters the shell
// leaves alone.
func ShellQuote(v string) string {
	if v != "" && strings.Trim(v, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:") == "" {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

// EnsureConfig ensures config exists at path.
func EnsureConfig(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".region-select", "config.yml")
	}
	if err := config.EnsureDefaultConfig(path); err != nil {
		return "", err
	}
	return path, nil
}
