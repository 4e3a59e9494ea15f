package canvas

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/mode"
	"github.com/greta-mvc/flowmap/internal/ui/markdown"
	"github.com/greta-mvc/flowmap/internal/ui/styles"
	"github.com/greta-mvc/flowmap/internal/ui/toaster"
)

var closeDetail = key.NewBinding(key.WithKeys("esc", "backspace"))

// detailSize is the viewport size of the class page for a terminal of the
// given size.
func detailSize(width, height int) (int, int) {
	return max(min(width-6, 90), 20), max(height-8, 3)
}

// openClass follows a class link. The route is what a browser would
// navigate to; in the terminal the class page opens as an overlay.
func (m Model) openClass(link diagram.IndustryClass) (Model, tea.Cmd) {
	class := link
	if c, ok := m.classes[link.ID]; ok {
		class = c
	}
	req := diagram.NavigationRequest{ClassID: class.ID}
	log.Info(log.CatDiagram, "class opened", "route", req.Route())

	domains := make([]diagram.ClassificationDomain, 0, m.canvas.Len())
	for _, n := range m.canvas.Nodes() {
		domains = append(domains, n.Domain())
	}

	w, h := detailSize(m.width, m.height)
	r, err := markdown.New(w, "")
	if err == nil {
		var out string
		if out, err = r.Render(markdown.ClassDetail(class, domains, m.industry)); err == nil {
			m.detail = viewport.New(w, h)
			m.detail.SetContent(out)
		}
	}
	if err != nil {
		log.ErrorErr(log.CatUI, "rendering class page failed", err, "class", class.ID)
		return m, mode.Toast("Cannot open "+class.Name+": "+err.Error(), toaster.StyleError)
	}

	m.detailName = class.Name
	m.overlay = overlayDetail
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, closeDetail) {
		m.overlay = overlayNone
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) detailView() string {
	title := styles.HeaderStyle.Render(m.detailName)
	hint := styles.MutedStyle.Render("j/k scroll  esc close")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, m.detail.View(), hint))
}
