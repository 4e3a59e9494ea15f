package overview

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
	"github.com/greta-mvc/flowmap/internal/ui/table"
)

func rowZoneID(index int, _ any) string {
	return "overview:row:" + strconv.Itoa(index)
}

func cell(f func(registry.OverviewRow) string) func(any, int, bool) string {
	return func(row any, _ int, _ bool) string {
		return f(row.(registry.OverviewRow))
	}
}

var firmStyle = lipgloss.NewStyle().Foreground(styles.ClassLinkColor)

func tableConfig(focused bool) table.Config {
	return table.Config{
		Columns: []table.Column{
			{Key: "firmName", Header: "Firm", MinWidth: 12, Render: func(row any, _ int, selected bool) string {
				name := row.(registry.OverviewRow).FirmName
				if selected {
					return name
				}
				return firmStyle.Render(name)
			}},
			{Key: "bizrNo", Header: "Business no.", Width: 12, HideBelow: 90, Render: cell(func(r registry.OverviewRow) string { return r.BizrNo })},
			{Key: "jurirNo", Header: "Corporate no.", Width: 14, HideBelow: 110, Render: cell(func(r registry.OverviewRow) string { return r.JurirNo })},
			{Key: "stockCode", Header: "Stock", Width: 7, Render: cell(func(r registry.OverviewRow) string { return r.StockCode })},
			{Key: "conglomerateName", Header: "Group", MaxWidth: 14, HideBelow: 70, Render: cell(registry.OverviewRow.Conglomerate)},
			{Key: "ceoName", Header: "CEO", MaxWidth: 12, Render: cell(func(r registry.OverviewRow) string { return r.CeoName })},
			{Key: "establishDate", Header: "Founded", Width: 10, HideBelow: 130, Render: cell(func(r registry.OverviewRow) string { return r.EstablishDate })},
			{Key: "address", Header: "Address", MinWidth: 10, HideBelow: 150, Render: cell(registry.OverviewRow.Address)},
			{Key: "homepage", Header: "Homepage", MaxWidth: 24, HideBelow: 170, Render: cell(registry.OverviewRow.HomepageOrDash)},
		},
		ShowHeader:         true,
		ShowBorder:         true,
		Title:              "Corporations",
		EmptyMessage:       "No corporations match",
		RowZoneID:          rowZoneID,
		Focused:            focused,
		FocusedBorderColor: styles.BorderHighlightFocusColor,
	}
}
