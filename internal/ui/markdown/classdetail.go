package markdown

import (
	"fmt"
	"slices"
	"strings"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/registry"
)

// ClassDetail builds the markdown page for an industry class: its id, code
// and name, followed by every domain that lists it as a class or a theme and
// the corporation counts of the class. A nil infos means the counts could
// not be loaded.
func ClassDetail(class diagram.IndustryClass, domains []diagram.ClassificationDomain, infos []registry.IndustryInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(class.Name))
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| ID | %d |\n", class.ID)
	fmt.Fprintf(&b, "| Code | %d |\n", class.Code)
	fmt.Fprintf(&b, "| Route | `%s` |\n\n", diagram.NavigationRequest{ClassID: class.ID}.Route())

	var asClass, asTheme []string
	for _, d := range domains {
		entry := fmt.Sprintf("- **%s** (#%d)", escape(d.Name), d.Code)
		if slices.ContainsFunc(d.Classes, sameID(class.ID)) {
			asClass = append(asClass, entry)
		}
		if slices.ContainsFunc(d.Themes, sameID(class.ID)) {
			asTheme = append(asTheme, entry)
		}
	}

	b.WriteString("## Domains\n\n")
	writeList(&b, asClass, "_Not listed as a class in any domain._")
	b.WriteString("## Themes\n\n")
	writeList(&b, asTheme, "_Not used as a theme._")
	writeCorporations(&b, class.ID, infos)
	return b.String()
}

func writeCorporations(b *strings.Builder, classID int, infos []registry.IndustryInfo) {
	b.WriteString("## Corporations\n\n")
	if infos == nil {
		b.WriteString("_Corporation counts unavailable._\n\n")
		return
	}
	rows := registry.InfoForClass(infos, classID)
	if len(rows) == 0 {
		b.WriteString("_No corporations recorded._\n\n")
		return
	}
	b.WriteString("| Domain | Total | KOSPI | KOSDAQ | KONEX | Audited | Unaudited | Share |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, in := range rows {
		c := in.Count
		fmt.Fprintf(b, "| %s | %d | %d | %d | %d | %d | %d | %.1f%% |\n",
			escape(in.DomainName), c.Total, c.KOSPI, c.KOSDAQ, c.KONEX, c.Audited, c.Unaudited, in.Rate.Total*100)
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, items []string, empty string) {
	if len(items) == 0 {
		b.WriteString(empty + "\n\n")
		return
	}
	b.WriteString(strings.Join(items, "\n"))
	b.WriteString("\n\n")
}

func sameID(id int) func(diagram.IndustryClass) bool {
	return func(c diagram.IndustryClass) bool { return c.ID == id }
}

var escaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `|`, `\|`, `#`, `\#`)

func escape(s string) string {
	return escaper.Replace(s)
}
