package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kart-io/iwac-chat/cmd/iwac-chat/app/options"
	"github.com/kart-io/iwac-chat/internal/chat/biz"
)

// newAskCommand 一次性问答：加载语料，执行一次流水线并打印回答和来源。
func newAskCommand(opts *options.ServerOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Config()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := cfg.InitLogger(); err != nil {
				return err
			}

			ctx := setupSignalContext()
			comp, err := cfg.NewComponents(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()

			res := comp.Pipeline.Run(ctx, strings.Join(args, " "), nil)
			printResult(cmd.OutOrStdout(), res, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print keywords, retrieval scores and degradation details.")
	return cmd
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	indexColor   = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
)

func printResult(w io.Writer, res *biz.Result, verbose bool) {
	if verbose {
		printDetails(w, res)
	}

	fmt.Fprintln(w, res.Response.Answer)
	if len(res.Response.Sources) == 0 {
		return
	}

	fmt.Fprintln(w)
	headingColor.Fprintln(w, "Sources:")
	for i, src := range res.Response.Sources {
		indexColor.Fprintf(w, "[%d] ", i+1)
		fmt.Fprint(w, src.Title)
		if meta := joinNonEmpty(src.Publisher, src.Date); meta != "" {
			fmt.Fprintf(w, " (%s)", meta)
		}
		fmt.Fprintln(w)
		if src.URL != "" {
			faintColor.Fprintf(w, "    %s\n", src.URL)
		}
	}
}

func printDetails(w io.Writer, res *biz.Result) {
	if len(res.Extraction.Keywords) > 0 {
		faintColor.Fprintf(w, "keywords (%s): %s\n", res.Extraction.Status, strings.Join(res.Extraction.Keywords, ", "))
	}
	if res.Retrieval != nil {
		for _, item := range res.Retrieval.Items {
			faintColor.Fprintf(w, "  %.4f  %s\n", item.Score, item.Document.Title)
		}
	}
	if res.Cached {
		faintColor.Fprintln(w, "answer served from cache")
	}
	if res.Degraded {
		msg := "degraded: " + res.Reason
		if res.Err != nil {
			msg += ": " + res.Err.Error()
		}
		warnColor.Fprintln(w, msg)
	}
	fmt.Fprintln(w)
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
