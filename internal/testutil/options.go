package testutil

import "fmt"

// corpData holds one corporation row to insert.
type corpData struct {
	corpCode     string
	corpName     string
	firmName     string
	bizrNo       string
	jurirNo      string
	stockCode    string
	conglomerate *string
	ceoName      string
	established  string
	adress1      string
	adress2      string
	homepage     *string
	corpCls      string
	audited      bool
	classIDs     []int
	affiliates   []string
	subsidiaries []string
}

func defaultCorp(code string) corpData {
	return corpData{
		corpCode:    code,
		corpName:    "Corp " + code,
		firmName:    "Firm " + code,
		bizrNo:      "B" + code,
		jurirNo:     "J" + code,
		ceoName:     "CEO " + code,
		established: "20000101",
		adress1:     "Seoul",
		adress2:     fmt.Sprintf("%s-ro", code),
	}
}

// CorpOption configures a corporation.
type CorpOption func(*corpData)

func CorpName(name string) CorpOption  { return func(c *corpData) { c.corpName = name } }
func FirmName(name string) CorpOption  { return func(c *corpData) { c.firmName = name } }
func BizrNo(no string) CorpOption      { return func(c *corpData) { c.bizrNo = no } }
func JurirNo(no string) CorpOption     { return func(c *corpData) { c.jurirNo = no } }
func StockCode(code string) CorpOption { return func(c *corpData) { c.stockCode = code } }
func CeoName(name string) CorpOption   { return func(c *corpData) { c.ceoName = name } }

func Conglomerate(name string) CorpOption {
	return func(c *corpData) { c.conglomerate = &name }
}

func Homepage(url string) CorpOption {
	return func(c *corpData) { c.homepage = &url }
}

func Address(line1, line2 string) CorpOption {
	return func(c *corpData) { c.adress1, c.adress2 = line1, line2 }
}

// Listing sets corp_cls ("Y", "K", "N" or "E").
func Listing(cls string) CorpOption { return func(c *corpData) { c.corpCls = cls } }

// Audited marks an unlisted corporation as externally audited.
func Audited() CorpOption { return func(c *corpData) { c.audited = true } }

// InClasses links the corporation to industry classes. The classes must be
// added through a domain.
func InClasses(ids ...int) CorpOption {
	return func(c *corpData) { c.classIDs = append(c.classIDs, ids...) }
}

func Affiliates(names ...string) CorpOption {
	return func(c *corpData) { c.affiliates = append(c.affiliates, names...) }
}

func Subsidiaries(names ...string) CorpOption {
	return func(c *corpData) { c.subsidiaries = append(c.subsidiaries, names...) }
}

// ClassData is an industry class to link to a domain.
type ClassData struct {
	ID   int
	Code int
	Name string
}

// Class creates a ClassData.
func Class(id, code int, name string) ClassData {
	return ClassData{ID: id, Code: code, Name: name}
}

// domainData holds one domain with its memberships.
type domainData struct {
	id      int
	code    int
	name    string
	classes []ClassData
	themes  []ClassData
}

// DomainOption configures a domain.
type DomainOption func(*domainData)

func DomainCode(code int) DomainOption { return func(d *domainData) { d.code = code } }

func Classes(classes ...ClassData) DomainOption {
	return func(d *domainData) { d.classes = append(d.classes, classes...) }
}

func Themes(themes ...ClassData) DomainOption {
	return func(d *domainData) { d.themes = append(d.themes, themes...) }
}
