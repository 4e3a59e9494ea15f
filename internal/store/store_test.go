package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/testutil"
)

func newTestStore(t *testing.T) (*Store, *testutil.Builder) {
	t.Helper()
	db := testutil.NewTestDB(t)
	s, err := New(db)
	require.NoError(t, err)
	return s, testutil.NewBuilder(t, db)
}

func TestOpen_CreatesDirectoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "registry.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
	_, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())
}

func TestOpen_PragmasAndBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	s1, err := Open(path)
	require.NoError(t, err)

	var journal string
	require.NoError(t, s1.DB().QueryRow("PRAGMA journal_mode").Scan(&journal))
	require.Equal(t, "wal", journal)
	var fk, busy int
	require.NoError(t, s1.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, s1.DB().QueryRow("PRAGMA busy_timeout").Scan(&busy))
	require.Equal(t, 1, fk)
	require.Equal(t, 5000, busy)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	info, err := os.Stat(path + ".bak")
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='domain_classes'`).Scan(&name))
	require.NoError(t, db.Ping(), "migrations must not close the connection")
}

func TestOverview_Paging(t *testing.T) {
	s, b := newTestStore(t)
	b.WithCorporations(45).Build()

	page, err := s.Overview(context.Background(), registry.Query{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 45, page.Length)
	require.Len(t, page.Data, 20)
	require.Equal(t, "C0000", page.Data[0].CorpCode)

	page, err = s.Overview(context.Background(), registry.Query{Page: 2, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, "C0020", page.Data[0].CorpCode)
	require.Equal(t, "C0039", page.Data[19].CorpCode)

	page, err = s.Overview(context.Background(), registry.Query{Page: 3, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Data, 5)

	page, err = s.Overview(context.Background(), registry.Query{Page: 9, Limit: 20})
	require.NoError(t, err)
	require.NotNil(t, page.Data)
	require.Empty(t, page.Data)
}

func TestOverview_DefaultAndMaxLimit(t *testing.T) {
	s, b := newTestStore(t)
	b.WithCorporations(260).Build()

	page, err := s.Overview(context.Background(), registry.Query{})
	require.NoError(t, err)
	require.Len(t, page.Data, DefaultLimit)

	page, err = s.Overview(context.Background(), registry.Query{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, page.Data, MaxLimit)
}

func TestOverview_KeywordByCategory(t *testing.T) {
	s, b := newTestStore(t)
	b.WithStandardTestData().Build()

	page, err := s.Overview(context.Background(), registry.Query{Category: registry.CategoryCorpName, Keyword: "samsung"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Length)
	require.Equal(t, "00126380", page.Data[0].CorpCode)
	require.Equal(t, "Samsung", page.Data[0].Conglomerate())
	require.Equal(t, "https://www.samsung.com", page.Data[0].HomepageOrDash())

	page, err = s.Overview(context.Background(), registry.Query{Category: registry.CategoryStockCode, Keyword: "0006"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Length)
	require.Equal(t, "SK hynix Inc.", page.Data[0].FirmName)

	page, err = s.Overview(context.Background(), registry.Query{Category: registry.CategoryFirmName, Keyword: "%"})
	require.NoError(t, err)
	require.Zero(t, page.Length, "LIKE wildcards are matched literally")

	_, err = s.Overview(context.Background(), registry.Query{Category: "bogus"})
	require.Error(t, err)
}

func TestSuggest(t *testing.T) {
	s, b := newTestStore(t)
	b.WithStandardTestData().Build()

	items, err := s.Suggest(context.Background(), "Sam", registry.CategoryCorpName)
	require.NoError(t, err)
	require.Equal(t, []registry.SearchItem{
		{CorpCode: "01012345", FirmName: "Samil Solar Co."},
		{CorpCode: "00126380", FirmName: "Samsung Electronics Co., Ltd."},
	}, items)
}

func TestCorporation(t *testing.T) {
	s, b := newTestStore(t)
	b.WithStandardTestData().Build()

	row, err := s.Corporation(context.Background(), "00258801")
	require.NoError(t, err)
	require.Equal(t, "Kakao Corp.", row.FirmName)
	require.NotNil(t, row.ID)
	require.Nil(t, row.Homepage)

	_, err = s.Corporation(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDomains(t *testing.T) {
	s, b := newTestStore(t)
	b.WithStandardTestData().WithDomain(3, "Empty").Build()

	domains, err := s.Domains(context.Background())
	require.NoError(t, err)
	require.Len(t, domains, 3)

	require.Equal(t, "Semiconductors", domains[0].Name)
	require.Equal(t, []diagram.IndustryClass{
		{ID: 101, Code: 1010, Name: "Memory"},
		{ID: 102, Code: 1020, Name: "Foundry"},
	}, domains[0].Classes)
	require.Equal(t, []string{"Green Energy", "Grid Storage"}, []string{domains[1].Themes[0].Name, domains[1].Themes[1].Name})

	require.NotNil(t, domains[2].Classes)
	require.Empty(t, domains[2].Classes)
	require.Empty(t, domains[2].Themes)
	for _, d := range domains {
		require.NoError(t, d.Validate())
	}
}

func TestIndustryClasses(t *testing.T) {
	s, b := newTestStore(t)
	b.WithStandardTestData().Build()

	classes, err := s.IndustryClasses(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 6)
	require.Equal(t, 1010, classes[0].Code)
}
