package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/greta-mvc/flowmap/internal/apiclient"
	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/registry"
	"github.com/greta-mvc/flowmap/internal/store"
	"github.com/greta-mvc/flowmap/internal/testutil"
)

type ServerSuite struct {
	suite.Suite
	store  *store.Store
	router http.Handler
	spans  *tracetest.SpanRecorder
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.spans = tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(s.spans))

	db := testutil.NewTestDB(s.T())
	st, err := store.New(db, store.WithTracer(tp.Tracer("store")))
	s.Require().NoError(err)
	testutil.NewBuilder(s.T(), db).WithStandardTestData().WithCorporations(30).Build()

	s.store = st
	s.router = New(st, WithTracer(tp.Tracer("test"))).Routes()
}

func (s *ServerSuite) get(target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func (s *ServerSuite) TestOverview_DefaultPage() {
	w := s.get("/overview")
	s.Require().Equal(http.StatusOK, w.Code)

	data := decode[registry.OverviewListData](s.T(), w)
	s.Equal(35, data.Length)
	s.Len(data.Data, 35)
}

func (s *ServerSuite) TestOverview_LimitAndPage() {
	w := s.get("/overview?limit=20&page=2")
	s.Require().Equal(http.StatusOK, w.Code)

	data := decode[registry.OverviewListData](s.T(), w)
	s.Equal(35, data.Length)
	s.Len(data.Data, 15)
}

func (s *ServerSuite) TestOverview_KeywordByCategory() {
	w := s.get("/overview?category=stockCode&keyword=005930")
	s.Require().Equal(http.StatusOK, w.Code)

	data := decode[registry.OverviewListData](s.T(), w)
	s.Require().Equal(1, data.Length)
	s.Equal("00126380", data.Data[0].CorpCode)
	s.Equal("Samsung", data.Data[0].Conglomerate())
}

func (s *ServerSuite) TestOverview_BadParams() {
	cases := map[string]string{
		"unknown category": "/overview?category=ceoName",
		"negative limit":   "/overview?limit=-1",
		"page not number":  "/overview?page=two",
	}
	for name, target := range cases {
		s.Run(name, func() {
			w := s.get(target)
			s.Equal(http.StatusBadRequest, w.Code)
			body := decode[map[string]string](s.T(), w)
			s.Equal(CodeBadRequest, body["error"])
			s.NotEmpty(body["error_description"])
		})
	}
}

func (s *ServerSuite) TestSearch() {
	w := s.get("/overview/search?term=Sam&category=corpName")
	s.Require().Equal(http.StatusOK, w.Code)

	items := decode[[]registry.SearchItem](s.T(), w)
	s.Len(items, 2)

	w = s.get("/overview/search?term=")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(decode[[]registry.SearchItem](s.T(), w))
}

func (s *ServerSuite) TestCorporation() {
	w := s.get("/overview/00258801")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Kakao Corp.", decode[registry.OverviewRow](s.T(), w).FirmName)

	w = s.get("/overview/99999999")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(CodeNotFound, decode[map[string]string](s.T(), w)["error"])
}

func (s *ServerSuite) TestFlowmap() {
	w := s.get("/flowmap")
	s.Require().Equal(http.StatusOK, w.Code)

	var body struct {
		Length int                            `json:"length"`
		Data   []diagram.ClassificationDomain `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal(2, body.Length)
	s.Equal("Semiconductors", body.Data[0].Name)
	s.Len(body.Data[0].Classes, 2)
	s.Len(body.Data[1].Themes, 2)
}

func (s *ServerSuite) TestIndustryClasses() {
	w := s.get("/flowmap/industry-classes")
	s.Require().Equal(http.StatusOK, w.Code)

	var body struct {
		Length int                     `json:"length"`
		Data   []diagram.IndustryClass `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Equal(6, body.Length)
}

func (s *ServerSuite) TestIndustryList() {
	w := s.get("/industry")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(6, decode[struct {
		Length int `json:"length"`
	}](s.T(), w).Length)
}

func (s *ServerSuite) TestIndustryInfo() {
	w := s.get("/industry/info")
	s.Require().Equal(http.StatusOK, w.Code)

	var body struct {
		Length int                     `json:"length"`
		Data   []registry.IndustryInfo `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&body))
	s.Require().Equal(3, body.Length)

	memory := body.Data[0]
	s.Equal("Memory", memory.IndustryClassName)
	s.Equal(registry.ListingCounts{Total: 2, KOSPI: 2}, memory.Count)
	s.InDelta(2.0/35.0, memory.Rate.Total, 1e-9)
	s.InDelta(2.0/3.0, memory.Rate.KOSPI, 1e-9)
}

func (s *ServerSuite) TestIndustryInfoDownload() {
	w := s.get("/industry/info/download")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "industry_info.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 4, "header plus one row per domain class")
	s.Equal("Industry Class Name", records[0][2])
	s.Equal([]string{"3", "Energy", "Batteries", "2", "1", "0", "0", "1", "0"}, records[3][:9])
	s.Equal("1.000000", records[3][13], "the only audited corporation is a battery maker")
}

func (s *ServerSuite) TestDescription() {
	w := s.get("/overview/00126380/description")
	s.Require().Equal(http.StatusOK, w.Code)

	d := decode[registry.CorporationDescription](s.T(), w)
	s.Equal("Samsung Electronics Co., Ltd.", d.FirmName)
	s.Equal(registry.ListingKOSPI, d.CorpClass)
	s.Equal([]string{"Samsung SDI"}, d.Affiliates)
	s.Equal([]string{"Samsung Display"}, d.Subsidiaries)
	s.Len(d.Classes, 2)

	w = s.get("/overview/99999999/description")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerSuite) TestHealthz() {
	w := s.get("/healthz")
	s.Equal(http.StatusOK, w.Code)

	s.Require().NoError(s.store.Close())
	w = s.get("/healthz")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *ServerSuite) TestCORS() {
	w := s.get("/flowmap", "Origin", "http://localhost:5173")
	s.Equal("http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = s.get("/flowmap", "Origin", "http://evil.example")
	s.Empty(w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	s.get("/overview")
	w := s.get("/metrics")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `flowmap_http_requests_total{method="GET",route="/overview",status="200"} 1`)
}

func (s *ServerSuite) TestSpansNamedByRoute() {
	s.get("/overview/00258801")

	ended := s.spans.Ended()
	var names []string
	for _, sp := range ended {
		names = append(names, sp.Name())
	}
	s.Contains(names, "http.GET /overview/{corpCode}")
	s.Contains(names, "store.corporation")
}

func (s *ServerSuite) TestClientRoundTrip() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	c, err := apiclient.New(srv.URL, apiclient.WithRateLimit(0))
	s.Require().NoError(err)
	ctx := context.Background()

	page, err := c.Overview(ctx, registry.Query{Category: registry.CategoryCorpName, Keyword: "Kakao", Page: 1, Limit: 20})
	s.Require().NoError(err)
	s.Equal(1, page.Length)

	domains, err := c.Domains(ctx)
	s.Require().NoError(err)
	s.Len(domains, 2)

	_, err = c.Corporation(ctx, "nope")
	s.ErrorIs(err, registry.ErrNotFound)

	infos, err := c.IndustryInfo(ctx)
	s.Require().NoError(err)
	s.Len(infos, 3)

	d, err := c.Describe(ctx, "01012345")
	s.Require().NoError(err)
	s.Equal(registry.ListingOther, d.CorpClass)
}

type failingSource struct{ registry.Source }

func (failingSource) Domains(context.Context) ([]diagram.ClassificationDomain, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrorOmitsDescription(t *testing.T) {
	router := New(failingSource{}).Routes()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flowmap", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[map[string]string](t, w)
	require.Equal(t, CodeInternal, body["error"])
	_, ok := body["error_description"]
	require.False(t, ok)
}

func TestIntParam(t *testing.T) {
	n, err := intParam("", "page")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = intParam("7", "page")
	require.NoError(t, err)
	require.Equal(t, 7, n)

	_, err = intParam("0", "page")
	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, http.StatusBadRequest, e.Status)
}

func TestWriteIndustryInfoCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIndustryInfoCSV(&buf, nil))
	require.Equal(t, strings.Join(industryInfoHeader, ",")+"\n", buf.String())
}
