package testutil

// WithStandardTestData adds a small mixed registry: five named corporations
// and two domains, one of them with themes. Four corporations are listed
// (three KOSPI, one KOSDAQ) and one is unlisted but audited.
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithCorporation("00126380",
			CorpName("Samsung Electronics"), FirmName("Samsung Electronics Co., Ltd."),
			StockCode("005930"), Conglomerate("Samsung"), Homepage("https://www.samsung.com"),
			Listing("Y"), InClasses(101, 102), Affiliates("Samsung SDI"), Subsidiaries("Samsung Display")).
		WithCorporation("00164779",
			CorpName("SK hynix"), FirmName("SK hynix Inc."), StockCode("000660"), Conglomerate("SK"),
			Listing("Y"), InClasses(101)).
		WithCorporation("00401731",
			CorpName("LG Energy Solution"), FirmName("LG Energy Solution, Ltd."), StockCode("373220"),
			Listing("Y"), InClasses(103)).
		WithCorporation("00258801",
			CorpName("Kakao"), FirmName("Kakao Corp."), StockCode("035720"), BizrNo("1208147521"),
			Listing("K")).
		WithCorporation("01012345",
			CorpName("Samil Solar"), FirmName("Samil Solar Co."), Address("Naju", "55 Bitgaram-ro"),
			Listing("E"), Audited(), InClasses(103)).
		WithDomain(1, "Semiconductors",
			Classes(Class(101, 1010, "Memory"), Class(102, 1020, "Foundry")),
			Themes(Class(201, 2010, "AI Accelerators"))).
		WithDomain(2, "Energy",
			Classes(Class(103, 1030, "Batteries")),
			Themes(Class(202, 2020, "Green Energy"), Class(203, 2030, "Grid Storage")))
}
