package registry

import (
	"strings"

	"github.com/greta-mvc/flowmap/internal/diagram"
)

// ListingClass is a corporation's market listing: KOSPI (Y), KOSDAQ (K),
// KONEX (N) or other (E). The empty value means unknown.
type ListingClass string

const (
	ListingKOSPI  ListingClass = "Y"
	ListingKOSDAQ ListingClass = "K"
	ListingKONEX  ListingClass = "N"
	ListingOther  ListingClass = "E"
)

// ParseListingClass normalizes a corp_cls code. Unknown codes map to "".
func ParseListingClass(s string) ListingClass {
	switch c := ListingClass(strings.ToUpper(strings.TrimSpace(s))); c {
	case ListingKOSPI, ListingKOSDAQ, ListingKONEX, ListingOther:
		return c
	default:
		return ""
	}
}

// Listed reports whether the class is one of the three markets.
func (c ListingClass) Listed() bool {
	return c == ListingKOSPI || c == ListingKOSDAQ || c == ListingKONEX
}

// Label is the market name shown to users.
func (c ListingClass) Label() string {
	switch c {
	case ListingKOSPI:
		return "KOSPI"
	case ListingKOSDAQ:
		return "KOSDAQ"
	case ListingKONEX:
		return "KONEX"
	case ListingOther:
		return "etc"
	default:
		return "-"
	}
}

// ListingCounts counts corporations per listing bucket. Unlisted
// corporations split into externally audited and unaudited.
type ListingCounts struct {
	Total     int `json:"TOTAL"`
	KOSPI     int `json:"Y"`
	KOSDAQ    int `json:"K"`
	KONEX     int `json:"N"`
	Audited   int `json:"AUDITED"`
	Unaudited int `json:"UNAUDITED"`
}

// ListingRates mirrors ListingCounts as fractions.
type ListingRates struct {
	Total     float64 `json:"TOTAL"`
	KOSPI     float64 `json:"Y"`
	KOSDAQ    float64 `json:"K"`
	KONEX     float64 `json:"N"`
	Audited   float64 `json:"AUDITED"`
	Unaudited float64 `json:"UNAUDITED"`
}

// RatesOf divides each bucket by the same bucket of all. A bucket with no
// corporations in all has rate zero.
func (c ListingCounts) RatesOf(all ListingCounts) ListingRates {
	return ListingRates{
		Total:     ratio(c.Total, all.Total),
		KOSPI:     ratio(c.KOSPI, all.KOSPI),
		KOSDAQ:    ratio(c.KOSDAQ, all.KOSDAQ),
		KONEX:     ratio(c.KONEX, all.KONEX),
		Audited:   ratio(c.Audited, all.Audited),
		Unaudited: ratio(c.Unaudited, all.Unaudited),
	}
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// IndustryInfo is the corporation count of one industry class within one
// domain, with its share of the whole registry.
type IndustryInfo struct {
	DomainID          int           `json:"domainId"`
	DomainName        string        `json:"domainName"`
	IndustryClassID   int           `json:"industryClassId"`
	IndustryClassName string        `json:"industryClassName"`
	Count             ListingCounts `json:"cnt"`
	Rate              ListingRates  `json:"rate"`
}

// ListingPeriod is when a corporation entered and left one market. Dates
// are YYYYMMDD; empty means never.
type ListingPeriod struct {
	ListDate   string `json:"listDate"`
	DelistDate string `json:"delistDate"`
}

// CorporationDescription is the detail page of one corporation.
type CorporationDescription struct {
	OverviewRow
	CorpName        string                  `json:"corpName"`
	CorpNameEng     string                  `json:"corpNameEng"`
	CorpClass       ListingClass            `json:"corpCls"`
	Phone           string                  `json:"phnNo"`
	AccountingMonth string                  `json:"accMt"`
	MainBusiness    string                  `json:"mainBusiness"`
	Employees       *int                    `json:"employees"`
	SmallMedium     *bool                   `json:"smenpyn"`
	KOSPI           ListingPeriod           `json:"kospi"`
	KOSDAQ          ListingPeriod           `json:"kosdaq"`
	KONEX           ListingPeriod           `json:"konex"`
	Affiliates      []string                `json:"affiliateList"`
	Subsidiaries    []string                `json:"subCorpList"`
	Classes         []diagram.IndustryClass `json:"classList"`
}

// InfoForClass filters infos to one industry class.
func InfoForClass(infos []IndustryInfo, classID int) []IndustryInfo {
	var out []IndustryInfo
	for _, in := range infos {
		if in.IndustryClassID == classID {
			out = append(out, in)
		}
	}
	return out
}
