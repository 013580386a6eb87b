package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yubzen/fileops/internal/config"
	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/mirror"
	"github.com/yubzen/fileops/internal/ops"
	"github.com/yubzen/fileops/internal/parser"
	"github.com/yubzen/fileops/internal/state"
	"github.com/yubzen/fileops/internal/tui"
	"github.com/yubzen/fileops/internal/workspace"
)

type runtimeDeps struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	db       *state.DB
	ws       *workspace.Workspace
	mirror   *mirror.Mirror
	notifier *tui.PrintNotifier
	engine   *engine.Engine
}

func (r *runtimeDeps) Close() {
	if r == nil {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.mirror != nil && r.mirror.Done != nil {
		select {
		case <-r.mirror.Done:
		case <-time.After(3 * time.Second):
			fmt.Fprintln(os.Stderr, "timed out waiting for watcher shutdown")
		}
	}
	if r.db != nil {
		_ = r.db.Close()
	}
}

func bootstrapRuntime(cfg *config.Config, dir string, autoApprove bool) (*runtimeDeps, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	root := strings.TrimSpace(dir)
	if root == "" {
		root = strings.TrimSpace(cfg.Defaults.WorkspaceDir)
	}
	if root == "" {
		root = "."
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("invalid workspace directory %q: %w", root, err)
	}

	rt := &runtimeDeps{cfg: cfg}
	rt.ctx, rt.cancel = context.WithCancel(context.Background())

	rt.ws = workspace.New()
	rt.mirror = mirror.New(root)
	if err := rt.mirror.Load(rt.ws); err != nil {
		rt.Close()
		return nil, fmt.Errorf("load workspace from %s: %w", root, err)
	}

	if cfg.Audit.Enabled {
		db, err := state.Connect(cfg.Audit.DBPath)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.db = db
	}

	var confirm engine.ConfirmationProvider = tui.Confirmer{}
	if autoApprove || cfg.Defaults.AutoApprove {
		confirm = engine.AutoApprove{}
	}

	rt.notifier = tui.NewPrintNotifier(os.Stdout)
	rt.engine = &engine.Engine{
		Workspace: rt.ws,
		Parser:    &parser.Parser{DisableLooseFallback: !cfg.Parser.LooseFallback},
		Confirm:   confirm,
		Notifier:  rt.notifier,
		Editor:    engine.NoopEditor{},
	}
	return rt, nil
}

// readResponse returns the model response text from the file argument,
// or from stdin when no argument (or "-") is given.
func readResponse(args []string) (string, bool, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("read stdin: %w", err)
		}
		return string(data), false, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func printResult(result *engine.Result, format string) error {
	if result == nil {
		return nil
	}
	switch format {
	case "yaml":
		type report struct {
			Status     engine.Status     `yaml:"status"`
			Operations []engine.OpResult `yaml:"operations"`
		}
		out, err := yaml.Marshal(report{Status: result.Status, Operations: result.Executed})
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	case "text":
		fmt.Println(result.Summary())
		if details := result.FailureDetails(); details != "" {
			fmt.Println(details)
		}
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	return nil
}

func promptUndo(rt *runtimeDeps) error {
	if !rt.engine.CanUndo() {
		return nil
	}
	fmt.Print("Undo this batch? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return nil
	}

	result := rt.engine.LastResult()
	if found, err := rt.notifier.RunAction("Undo"); err != nil {
		return err
	} else if !found {
		if err := rt.engine.Undo(); err != nil {
			return err
		}
	}
	return rt.mirror.Revert(rt.ws, result)
}

func newApplyCmd() *cobra.Command {
	var (
		dir     string
		yes     bool
		format  string
		noAudit bool
		noFlush bool
	)
	cmd := &cobra.Command{
		Use:   "apply [response-file]",
		Short: "Extract file operations from a model response and apply them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responseText, fromFile, err := readResponse(args)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			rt, err := bootstrapRuntime(cfg, dir, yes)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.engine.Run(rt.ctx, responseText)
			if result == nil && err == nil {
				fmt.Println("No file operations found in response.")
				return nil
			}

			if rt.db != nil && !noAudit && result != nil {
				if auditErr := rt.db.RecordBatch(rt.ctx, responseText, result); auditErr != nil {
					fmt.Fprintln(os.Stderr, "warning: audit record failed:", auditErr)
				}
			}
			if err != nil {
				return err
			}

			if result.Status == engine.StatusCompleted && !noFlush {
				if flushErr := rt.mirror.Flush(result); flushErr != nil {
					return fmt.Errorf("write changes to disk: %w", flushErr)
				}
			}

			if reportErr := printResult(result, format); reportErr != nil {
				return reportErr
			}

			if fromFile && !yes && result.Status == engine.StatusCompleted {
				return promptUndo(rt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Workspace directory (defaults to config)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Approve destructive operations without prompting")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: text or yaml")
	cmd.Flags().BoolVar(&noAudit, "no-audit", false, "Skip the audit log for this batch")
	cmd.Flags().BoolVar(&noFlush, "dry-run", false, "Apply in memory only, leave disk untouched")
	return cmd
}

func newParseCmd() *cobra.Command {
	var noFallback bool
	cmd := &cobra.Command{
		Use:   "parse [response-file]",
		Short: "Extract file operations without applying them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			responseText, _, err := readResponse(args)
			if err != nil {
				return err
			}

			p := &parser.Parser{DisableLooseFallback: noFallback}
			batch := p.Parse(responseText)
			if len(batch) == 0 {
				fmt.Println("No file operations found in response.")
				return nil
			}
			if err := ops.Validate(batch); err != nil {
				return err
			}
			encoded, err := ops.EncodeEnvelope(batch)
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noFallback, "strict", false, "Disable the loose extraction fallback")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch outcomes from the audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Audit.Enabled {
				return errors.New("audit log is disabled in config")
			}

			db, err := state.Connect(cfg.Audit.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := db.ListBatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No batches recorded yet.")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%-5d %s  %-10s created=%d edited=%d deleted=%d failed=%d\n",
					rec.ID,
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.Status,
					rec.CreatedCount, rec.EditedCount, rec.DeletedCount, rec.FailedCount,
				)
				if rec.Detail != "" {
					fmt.Println("      " + strings.ReplaceAll(rec.Detail, "\n", "\n      "))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of batches to show")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror outside edits into the workspace until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			rt, err := bootstrapRuntime(cfg, dir, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			err = rt.mirror.Watch(rt.ctx, rt.ws, func(paths []string) {
				for _, p := range paths {
					fmt.Println("synced:", p)
				}
			})
			if err != nil {
				return err
			}

			fmt.Println("Watching", rt.mirror.Root, "- press Ctrl+C to stop.")
			sigCtx, stop := signal.NotifyContext(rt.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-sigCtx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Workspace directory (defaults to config)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Write the default config file if absent and show its path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			path := config.GetConfigPath()
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				if err := cfg.Save(); err != nil {
					return err
				}
			}
			fmt.Println(path)
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "fileops",
		Short: "Recover file operations from AI responses and apply them safely",
	}

	rootCmd.AddCommand(
		newApplyCmd(),
		newParseCmd(),
		newHistoryCmd(),
		newWatchCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
