package director

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable formats the plan as a rounded table, one row per layer.
func RenderTable(plan *Plan) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(fmt.Sprintf("%s  %dx%d@%d  total %.3fs", plan.Title, plan.Width, plan.Height, plan.FPS, plan.Total))
	tw.AppendHeader(table.Row{"#", "kind", "item", "start", "end", "duration", "position", "size", "effect", "content"})

	for i, l := range plan.Layers {
		item := "-"
		if l.Index >= 0 {
			item = fmt.Sprintf("%d", l.Index)
		}
		tw.AppendRow(table.Row{
			i,
			string(l.Kind),
			item,
			fmt.Sprintf("%.3f", l.Start),
			fmt.Sprintf("%.3f", l.End),
			fmt.Sprintf("%.3f", l.Duration),
			fmt.Sprintf("%d,%d", l.X, l.Y),
			fmt.Sprintf("%dx%d", l.W, l.H),
			string(l.Effect),
			truncate(l.Text, 24),
		})
	}

	right := []int{1, 3, 4, 5, 6}
	configs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func truncate(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
