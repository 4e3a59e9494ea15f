package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// Builder accumulates registry fixtures and inserts them in order.
type Builder struct {
	t       *testing.T
	db      *sql.DB
	corps   []corpData
	domains []domainData
}

// NewBuilder creates a builder for a migrated test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithCorporation adds a corporation.
func (b *Builder) WithCorporation(corpCode string, opts ...CorpOption) *Builder {
	c := defaultCorp(corpCode)
	for _, opt := range opts {
		opt(&c)
	}
	b.corps = append(b.corps, c)
	return b
}

// WithCorporations adds n generated corporations with codes C0000..C{n-1}.
func (b *Builder) WithCorporations(n int) *Builder {
	for i := range n {
		b.WithCorporation(fmt.Sprintf("C%04d", i))
	}
	return b
}

// WithDomain adds a classification domain.
func (b *Builder) WithDomain(id int, name string, opts ...DomainOption) *Builder {
	d := domainData{id: id, code: id * 10, name: name}
	for _, opt := range opts {
		opt(&d)
	}
	b.domains = append(b.domains, d)
	return b
}

// Build inserts everything.
func (b *Builder) Build() {
	b.t.Helper()
	for _, c := range b.corps {
		_, err := b.db.Exec(`
			INSERT INTO corporations (corp_code, corp_name, firm_name, bizr_no, jurir_no, stock_code,
				conglomerate_name, ceo_name, establish_date, adress1, adress2, homepage, corp_cls, audited)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.corpCode, c.corpName, c.firmName, c.bizrNo, c.jurirNo, c.stockCode,
			c.conglomerate, c.ceoName, c.established, c.adress1, c.adress2, c.homepage, c.corpCls, c.audited)
		require.NoError(b.t, err, "insert corporation %s", c.corpCode)
	}
	for pos, d := range b.domains {
		_, err := b.db.Exec(`INSERT INTO domains (id, code, name, position) VALUES (?, ?, ?, ?)`,
			d.id, d.code, d.name, pos)
		require.NoError(b.t, err, "insert domain %d", d.id)
		b.link(d.id, "class", d.classes)
		b.link(d.id, "theme", d.themes)
	}
	for _, c := range b.corps {
		b.relate(c.corpCode, "affiliate", c.affiliates)
		b.relate(c.corpCode, "subsidiary", c.subsidiaries)
		for _, id := range c.classIDs {
			_, err := b.db.Exec(`INSERT INTO corporation_classes (corp_code, class_id) VALUES (?, ?)`, c.corpCode, id)
			require.NoError(b.t, err, "link corporation %s to class %d", c.corpCode, id)
		}
	}
}

func (b *Builder) relate(corpCode, kind string, names []string) {
	b.t.Helper()
	for i, name := range names {
		_, err := b.db.Exec(`INSERT INTO corporation_relations (corp_code, kind, name, position) VALUES (?, ?, ?, ?)`,
			corpCode, kind, name, i)
		require.NoError(b.t, err, "insert %s %s", kind, name)
	}
}

func (b *Builder) link(domainID int, kind string, classes []ClassData) {
	b.t.Helper()
	for i, c := range classes {
		_, err := b.db.Exec(`INSERT OR IGNORE INTO industry_classes (id, code, name) VALUES (?, ?, ?)`, c.ID, c.Code, c.Name)
		require.NoError(b.t, err, "insert class %d", c.ID)
		_, err = b.db.Exec(`INSERT INTO domain_classes (domain_id, class_id, kind, position) VALUES (?, ?, ?, ?)`,
			domainID, c.ID, kind, i)
		require.NoError(b.t, err, "link class %d", c.ID)
	}
}
