package server

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/greta-mvc/flowmap/internal/registry"
)

var industryInfoHeader = []string{
	"Index", "Domain Name", "Industry Class Name",
	"TOTAL", "Y", "K", "N", "AUDITED", "UNAUDITED",
	"TOTAL Rate", "Y Rate", "K Rate", "N Rate", "AUDITED Rate", "UNAUDITED Rate",
}

// WriteIndustryInfoCSV writes infos as a spreadsheet-ready table. Rates use
// six decimals.
func WriteIndustryInfoCSV(w io.Writer, infos []registry.IndustryInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(industryInfoHeader); err != nil {
		return err
	}
	for i, in := range infos {
		c, r := in.Count, in.Rate
		record := []string{
			strconv.Itoa(i + 1), in.DomainName, in.IndustryClassName,
			strconv.Itoa(c.Total), strconv.Itoa(c.KOSPI), strconv.Itoa(c.KOSDAQ), strconv.Itoa(c.KONEX),
			strconv.Itoa(c.Audited), strconv.Itoa(c.Unaudited),
			rate(r.Total), rate(r.KOSPI), rate(r.KOSDAQ), rate(r.KONEX), rate(r.Audited), rate(r.Unaudited),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rate(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
