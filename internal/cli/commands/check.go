package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/protopool/internal/cli/config"
	"github.com/conduit-lang/protopool/internal/cli/ui"
	"github.com/conduit-lang/protopool/internal/diag"
	"github.com/conduit-lang/protopool/pkg/descpool"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <set.pb>...",
		Short: "Validate descriptor sets",
		Long: `Build a pool from one or more serialized FileDescriptorSets and report
every problem found. Later sets may import files from earlier ones.

Exits non-zero when the sets do not form a valid pool.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return runCheck(s, args)
		},
	}
}

func runCheck(s *session, paths []string) error {
	pool, err := s.loadPool(paths)
	if err != nil {
		list, ok := diag.AsList(err)
		if !ok {
			return err
		}
		if err := s.printDiagnostics(list); err != nil {
			return err
		}
		errs, _ := list.ErrorCount()
		return &reportedError{err: fmt.Errorf("%d error(s) found", errs)}
	}

	if s.cfg.Output.Format != config.FormatText {
		return s.printDiagnostics(nil)
	}
	skip := s.baseFiles()
	files := len(pool.Files()) - skip
	ui.WriteSuccess(s.out, fmt.Sprintf("%d file(s) checked: %s", files, summarize(pool, skip)), s.noColor)
	return nil
}

// summarize counts the definitions declared by files past the base
func summarize(pool *descpool.Pool, skip int) string {
	own := make(map[string]bool)
	for _, f := range pool.Files()[skip:] {
		own[f.Name()] = true
	}
	var messages, enums, services, extensions int
	for _, m := range pool.Messages() {
		if own[m.ParentFile().Name()] && !m.IsMapEntry() {
			messages++
		}
	}
	for _, e := range pool.Enums() {
		if own[e.ParentFile().Name()] {
			enums++
		}
	}
	for _, svc := range pool.Services() {
		if own[svc.ParentFile().Name()] {
			services++
		}
	}
	for _, x := range pool.Extensions() {
		if own[x.ParentFile().Name()] {
			extensions++
		}
	}
	return fmt.Sprintf("%d message(s), %d enum(s), %d service(s), %d extension(s)",
		messages, enums, services, extensions)
}
