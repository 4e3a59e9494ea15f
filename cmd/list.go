package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/tracing"
)

const listTimeout = 15 * time.Second

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the registry overview",
	Long: `Print one page of the registry overview as a table.

Categories: corpName, firmName, bizrNo, jurirNo, stockCode.

Example:
  flowmap list
  flowmap list --category stockCode --keyword 0059
  flowmap list --source db --page 2`,
	RunE: runList,
}

var (
	listCategory string
	listKeyword  string
	listPage     int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listCategory, "category", string(registry.DefaultCategory), "search category")
	listCmd.Flags().StringVarP(&listKeyword, "keyword", "k", "", "search keyword")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
}

func runList(cmd *cobra.Command, _ []string) error {
	category, err := registry.ParseCategory(listCategory)
	if err != nil {
		return err
	}
	if listPage < 1 {
		return fmt.Errorf("page must be at least 1, got %d", listPage)
	}

	source, closeSource, err := openSource(cfg, tracing.Disabled().Tracer())
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	q := registry.Query{
		Category: category,
		Keyword:  listKeyword,
		Page:     listPage,
		Limit:    registry.PageSize,
	}
	return listOverview(cmd.Context(), cmd.OutOrStdout(), source, q)
}

func listOverview(ctx context.Context, w io.Writer, source registry.Source, q registry.Query) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	page, err := source.Overview(ctx, q)
	if err != nil {
		return fmt.Errorf("fetching overview: %w", err)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("CORP CODE", "FIRM", "BUSINESS NO.", "STOCK", "CEO", "GROUP")
	for _, r := range page.Data {
		t.Row(r.CorpCode, r.FirmName, r.BizrNo, r.StockCode, r.CeoName, r.Conglomerate())
	}

	pages := max((page.Length+registry.PageSize-1)/registry.PageSize, 1)
	_, err = fmt.Fprintf(w, "%s\npage %d/%d · %d firms\n", t.Render(), q.Page, pages, page.Length)
	return err
}
