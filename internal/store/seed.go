package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/log"
	"github.com/greta-mvc/flowmap/internal/registry"
)

const (
	kindClass = "class"
	kindTheme = "theme"
)

//go:embed seed/sample.yaml
var sampleSeed []byte

// SeedCorporation is one corporation entry of a seed file.
type SeedCorporation struct {
	CorpCode         string  `yaml:"corp_code"`
	CorpName         string  `yaml:"corp_name"`
	FirmName         string  `yaml:"firm_name"`
	BizrNo           string  `yaml:"bizr_no"`
	JurirNo          string  `yaml:"jurir_no"`
	StockCode        string  `yaml:"stock_code"`
	ConglomerateName *string `yaml:"conglomerate_name"`
	CeoName          string  `yaml:"ceo_name"`
	EstablishDate    string  `yaml:"establish_date"`
	Adress1          string  `yaml:"adress1"`
	Adress2          string  `yaml:"adress2"`
	Homepage         *string `yaml:"homepage"`

	CorpNameEng  string      `yaml:"corp_name_eng"`
	CorpCls      string      `yaml:"corp_cls"`
	Audited      bool        `yaml:"audited"`
	Phone        string      `yaml:"phone"`
	AccMt        string      `yaml:"acc_mt"`
	MainBusiness string      `yaml:"main_business"`
	Employees    *int        `yaml:"employees"`
	SmallMedium  *bool       `yaml:"small_medium"`
	KOSPI        SeedListing `yaml:"kospi"`
	KOSDAQ       SeedListing `yaml:"kosdaq"`
	KONEX        SeedListing `yaml:"konex"`
	Affiliates   []string    `yaml:"affiliates"`
	Subsidiaries []string    `yaml:"subsidiaries"`
	Classes      []int       `yaml:"classes"`
}

// SeedListing is the listing period of a corporation on one market.
type SeedListing struct {
	ListDate   string `yaml:"list_date"`
	DelistDate string `yaml:"delist_date"`
}

// SeedClass is an industry class entry of a seed file.
type SeedClass struct {
	ID   int    `yaml:"id"`
	Code int    `yaml:"code"`
	Name string `yaml:"name"`
}

// SeedDomain is a classification domain entry of a seed file.
type SeedDomain struct {
	ID       int              `yaml:"id"`
	Code     int              `yaml:"code"`
	Name     string           `yaml:"name"`
	Classes  []SeedClass      `yaml:"classes"`
	Themes   []SeedClass      `yaml:"themes"`
	Contents []map[string]any `yaml:"contents"`
}

// SeedData is the content of a seed file.
type SeedData struct {
	Corporations []SeedCorporation `yaml:"corporations"`
	Domains      []SeedDomain      `yaml:"domains"`
}

// SampleSeed returns the built-in demo data set.
func SampleSeed() (SeedData, error) {
	return ParseSeed(sampleSeed)
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (SeedData, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (SeedData, error) {
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return SeedData{}, fmt.Errorf("parse seed: %w", err)
	}
	codes := map[string]struct{}{}
	for i, c := range seed.Corporations {
		if c.CorpCode == "" {
			return SeedData{}, fmt.Errorf("corporation %d: corp_code is required", i)
		}
		if _, dup := codes[c.CorpCode]; dup {
			return SeedData{}, fmt.Errorf("corporation %s: duplicate corp_code", c.CorpCode)
		}
		codes[c.CorpCode] = struct{}{}
		if c.CorpCls != "" && registry.ParseListingClass(c.CorpCls) == "" {
			return SeedData{}, fmt.Errorf("corporation %s: unknown corp_cls %q", c.CorpCode, c.CorpCls)
		}
	}
	for _, d := range seed.Domains {
		if err := d.domain().Validate(); err != nil {
			return SeedData{}, err
		}
	}
	return seed, nil
}

func (d SeedDomain) domain() diagram.ClassificationDomain {
	conv := func(in []SeedClass) []diagram.IndustryClass {
		out := make([]diagram.IndustryClass, 0, len(in))
		for _, c := range in {
			out = append(out, diagram.IndustryClass{ID: c.ID, Code: c.Code, Name: c.Name})
		}
		return out
	}
	return diagram.ClassificationDomain{ID: d.ID, Code: d.Code, Name: d.Name, Classes: conv(d.Classes), Themes: conv(d.Themes)}
}

// Seed upserts the seed data in one transaction. Domains listed in the seed
// have their class membership replaced.
func (s *Store) Seed(ctx context.Context, seed SeedData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range seed.Corporations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO corporations (corp_code, corp_name, firm_name, bizr_no, jurir_no, stock_code,
				conglomerate_name, ceo_name, establish_date, adress1, adress2, homepage,
				corp_name_eng, corp_cls, audited, phone, acc_mt, main_business, employees, small_medium,
				kospi_list_date, kospi_delist_date, kosdaq_list_date, kosdaq_delist_date,
				konex_list_date, konex_delist_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(corp_code) DO UPDATE SET
				corp_name = excluded.corp_name,
				firm_name = excluded.firm_name,
				bizr_no = excluded.bizr_no,
				jurir_no = excluded.jurir_no,
				stock_code = excluded.stock_code,
				conglomerate_name = excluded.conglomerate_name,
				ceo_name = excluded.ceo_name,
				establish_date = excluded.establish_date,
				adress1 = excluded.adress1,
				adress2 = excluded.adress2,
				homepage = excluded.homepage,
				corp_name_eng = excluded.corp_name_eng,
				corp_cls = excluded.corp_cls,
				audited = excluded.audited,
				phone = excluded.phone,
				acc_mt = excluded.acc_mt,
				main_business = excluded.main_business,
				employees = excluded.employees,
				small_medium = excluded.small_medium,
				kospi_list_date = excluded.kospi_list_date,
				kospi_delist_date = excluded.kospi_delist_date,
				kosdaq_list_date = excluded.kosdaq_list_date,
				kosdaq_delist_date = excluded.kosdaq_delist_date,
				konex_list_date = excluded.konex_list_date,
				konex_delist_date = excluded.konex_delist_date`,
			c.CorpCode, c.CorpName, c.FirmName, c.BizrNo, c.JurirNo, c.StockCode,
			nullable(c.ConglomerateName), c.CeoName, c.EstablishDate, c.Adress1, c.Adress2, nullable(c.Homepage),
			c.CorpNameEng, string(registry.ParseListingClass(c.CorpCls)), c.Audited, c.Phone, c.AccMt, c.MainBusiness,
			nullable(c.Employees), nullable(c.SmallMedium),
			c.KOSPI.ListDate, c.KOSPI.DelistDate, c.KOSDAQ.ListDate, c.KOSDAQ.DelistDate,
			c.KONEX.ListDate, c.KONEX.DelistDate,
		)
		if err != nil {
			return fmt.Errorf("seed corporation %s: %w", c.CorpCode, err)
		}
	}

	for pos, d := range seed.Domains {
		if err := seedDomain(ctx, tx, pos, d); err != nil {
			return err
		}
	}

	// Class links need the classes inserted above.
	for _, c := range seed.Corporations {
		if err := seedCorporationLinks(ctx, tx, c); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Info(log.CatDB, "seeded registry", "corporations", len(seed.Corporations), "domains", len(seed.Domains))
	return nil
}

func seedDomain(ctx context.Context, tx *sql.Tx, pos int, d SeedDomain) error {
	contents := d.Contents
	if contents == nil {
		contents = []map[string]any{}
	}
	raw, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("domain %d contents: %w", d.ID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO domains (id, code, name, position, contents) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET code = excluded.code, name = excluded.name,
			position = excluded.position, contents = excluded.contents`,
		d.ID, d.Code, d.Name, pos, string(raw))
	if err != nil {
		return fmt.Errorf("seed domain %d: %w", d.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM domain_classes WHERE domain_id = ?`, d.ID); err != nil {
		return fmt.Errorf("reset domain %d classes: %w", d.ID, err)
	}

	link := func(kind string, items []SeedClass) error {
		for i, c := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO industry_classes (id, code, name) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET code = excluded.code, name = excluded.name`,
				c.ID, c.Code, c.Name)
			if err != nil {
				return fmt.Errorf("seed industry class %d: %w", c.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO domain_classes (domain_id, class_id, kind, position) VALUES (?, ?, ?, ?)`,
				d.ID, c.ID, kind, i)
			if err != nil {
				return fmt.Errorf("link class %d to domain %d: %w", c.ID, d.ID, err)
			}
		}
		return nil
	}
	if err := link(kindClass, d.Classes); err != nil {
		return err
	}
	return link(kindTheme, d.Themes)
}

func seedCorporationLinks(ctx context.Context, tx *sql.Tx, c SeedCorporation) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM corporation_relations WHERE corp_code = ?`, c.CorpCode); err != nil {
		return fmt.Errorf("reset corporation %s relations: %w", c.CorpCode, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM corporation_classes WHERE corp_code = ?`, c.CorpCode); err != nil {
		return fmt.Errorf("reset corporation %s classes: %w", c.CorpCode, err)
	}

	relate := func(kind string, names []string) error {
		for i, name := range names {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO corporation_relations (corp_code, kind, name, position) VALUES (?, ?, ?, ?)
				ON CONFLICT(corp_code, kind, name) DO NOTHING`,
				c.CorpCode, kind, name, i)
			if err != nil {
				return fmt.Errorf("seed %s %q of %s: %w", kind, name, c.CorpCode, err)
			}
		}
		return nil
	}
	if err := relate(relationAffiliate, c.Affiliates); err != nil {
		return err
	}
	if err := relate(relationSubsidiary, c.Subsidiaries); err != nil {
		return err
	}

	for _, id := range c.Classes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO corporation_classes (corp_code, class_id) VALUES (?, ?)
			ON CONFLICT(corp_code, class_id) DO NOTHING`,
			c.CorpCode, id)
		if err != nil {
			return fmt.Errorf("link corporation %s to class %d: %w", c.CorpCode, id, err)
		}
	}
	return nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
