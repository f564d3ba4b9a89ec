package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/protopool/internal/cli/config"
	"github.com/conduit-lang/protopool/internal/cli/ui"
	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/pkg/descpool"
)

// session carries the resolved configuration of one command invocation
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

func newSession(cmd *cobra.Command) (*session, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: configFile, Flags: cmd.Flags()})
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err, false))
		return nil, &reportedError{err: err}
	}
	return &session{
		cfg:     cfg,
		logger:  newLogger(cfg.Log.Verbose),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		noColor: !cfg.Output.Color,
	}, nil
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadPool decodes each FileDescriptorSet in turn, extending the pool built
// from the ones before it
func (s *session) loadPool(paths []string) (*descpool.Pool, error) {
	defer s.logger.Sync() //nolint:errcheck

	opts := []descpool.Option{descpool.WithLogger(s.logger)}
	if s.cfg.WellKnownTypes {
		opts = append(opts, descpool.WithWellKnownTypes())
	}

	var pool *descpool.Pool
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if pool == nil {
			pool, err = descpool.Decode(data, opts...)
		} else {
			pool, err = pool.DecodeExtend(data)
		}
		if err != nil {
			return nil, err
		}
		s.logger.Debug("descriptor set loaded", zap.String("path", path), zap.Int("files", len(pool.Files())))
	}
	return pool, nil
}

// baseFiles returns the number of leading pool files that came from the
// well-known types rather than the loaded sets
func (s *session) baseFiles() int {
	if !s.cfg.WellKnownTypes {
		return 0
	}
	wk, err := descpool.WellKnownTypes()
	if err != nil {
		return 0
	}
	return len(wk.Files())
}

// printDiagnostics writes a diagnostic list in the configured format
func (s *session) printDiagnostics(list diag.List) error {
	switch s.cfg.Output.Format {
	case config.FormatJSON:
		out, err := list.FormatJSON()
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		fmt.Fprintln(s.out, out)
	case config.FormatLSP:
		return s.printJSON(list.ToProtocol(s.cfg.Output.Root))
	default:
		list.WriteTerminal(s.out, diag.FormatOptions{NoColor: s.noColor})
	}
	return nil
}

func (s *session) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}
