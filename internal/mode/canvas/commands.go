package canvas

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
)

const fetchTimeout = 10 * time.Second

// domainsLoadedMsg carries the domains to draw plus the class catalog used
// to resolve class links. industry is nil when the counts failed to load.
type domainsLoadedMsg struct {
	domains  []diagram.ClassificationDomain
	classes  []diagram.IndustryClass
	industry []registry.IndustryInfo
	err      error
}

// fetchDomains loads domains, the class catalog and the per-class
// corporation counts concurrently. The counts only decorate class pages, so
// their failure is logged and does not fail the load.
func fetchDomains(ctx context.Context, src registry.Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		var msg domainsLoadedMsg
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.domains, err = src.Domains(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			msg.classes, err = src.IndustryClasses(gctx)
			return err
		})
		g.Go(func() error {
			infos, err := src.IndustryInfo(gctx)
			if err != nil {
				log.Debug(log.CatDiagram, "industry info unavailable", "error", err)
				return nil
			}
			msg.industry = infos
			return nil
		})
		msg.err = g.Wait()
		return msg
	}
}
