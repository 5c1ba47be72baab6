// Package ubl arma el documento electrónico UBL 2.1 (sin firma XAdES) de una factura emitida
// y lo empaqueta en el ZIP con el nombre que exige la DIAN.
package ubl

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/pkg/dian"
)

// Namespaces UBL 2.1 y extensión DIAN (Anexo Técnico 1.9).
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
	NsSts     = "dian:gov:co:facturaelectronica:v1"
)

var colombia = time.FixedZone("COT", -5*60*60)

// Builder genera el XML y su empaque.
type Builder struct {
	currency string
}

// NewBuilder crea el builder. currency vacío = COP.
func NewBuilder(currency string) *Builder {
	if currency == "" {
		currency = "COP"
	}
	return &Builder{currency: strings.ToUpper(currency)}
}

// Build devuelve el XML de la factura y el digest SHA-256 (base64) de su forma canónica C14N.
// La factura debe traer CUFE y líneas cargadas.
func (b *Builder) Build(inv *entity.Invoice, company *entity.Company) ([]byte, string, error) {
	if inv == nil || company == nil {
		return nil, "", fmt.Errorf("ubl: faltan factura o empresa")
	}
	if inv.CUFE == "" {
		return nil, "", fmt.Errorf("ubl: la factura %s no tiene CUFE", inv.Number)
	}
	if err := Validate(inv); err != nil {
		return nil, "", err
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)
	root.CreateAttr("xmlns:ext", NsExt)
	root.CreateAttr("xmlns:sts", NsSts)

	b.writeExtensions(root, company)

	issued := inv.CreatedAt.In(colombia)
	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "CustomizationID", "10")
	cbc(root, "ProfileID", "DIAN 2.1: Factura Electrónica de Venta")
	cbc(root, "ID", inv.Number)
	cbc(root, "UUID", inv.CUFE).CreateAttr("schemeName", "CUFE-SHA384")
	cbc(root, "IssueDate", issued.Format("2006-01-02"))
	cbc(root, "IssueTime", issued.Format("15:04:05-07:00"))
	cbc(root, "InvoiceTypeCode", "01")
	cbc(root, "DocumentCurrencyCode", b.currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(inv.Lines)))

	supplier := root.CreateElement("cac:AccountingSupplierParty")
	cbc(supplier, "AdditionalAccountID", "1")
	party(supplier, company.Name, company.NIT, dian.IdentificationTypeNIT)

	customer := root.CreateElement("cac:AccountingCustomerParty")
	cbc(customer, "AdditionalAccountID", "2")
	name, document := inv.Customer.Name, inv.Customer.Document
	if strings.TrimSpace(document) == "" {
		name, document = "Consumidor final", dian.ConsumidorFinal
	}
	party(customer, name, document, dian.IdentificationType(document))

	hasCredit := false
	for _, t := range inv.Payments {
		hasCredit = hasCredit || t.Method == entity.PaymentCredit
	}
	for _, t := range inv.Payments {
		means := root.CreateElement("cac:PaymentMeans")
		cbc(means, "ID", dian.PaymentForm(hasCredit))
		cbc(means, "PaymentMeansCode", dian.PaymentMeansCode(t.Method))
	}

	if inv.TaxEnabled {
		tax := root.CreateElement("cac:TaxTotal")
		b.amount(tax, "TaxAmount", inv.TaxAmount)
		sub := tax.CreateElement("cac:TaxSubtotal")
		b.amount(sub, "TaxableAmount", inv.Subtotal)
		b.amount(sub, "TaxAmount", inv.TaxAmount)
		cat := sub.CreateElement("cac:TaxCategory")
		cbc(cat, "Percent", inv.TaxRate.StringFixed(2))
		scheme := cat.CreateElement("cac:TaxScheme")
		cbc(scheme, "ID", dian.TaxCodeIVA)
		cbc(scheme, "Name", "IVA")
	}

	totals := root.CreateElement("cac:LegalMonetaryTotal")
	b.amount(totals, "LineExtensionAmount", inv.Subtotal)
	b.amount(totals, "TaxExclusiveAmount", inv.Subtotal)
	b.amount(totals, "TaxInclusiveAmount", inv.Total)
	b.amount(totals, "PayableAmount", inv.Total)

	for i, l := range inv.Lines {
		line := root.CreateElement("cac:InvoiceLine")
		cbc(line, "ID", strconv.Itoa(i+1))
		cbc(line, "InvoicedQuantity", l.Quantity.String()).CreateAttr("unitCode", "94")
		b.amount(line, "LineExtensionAmount", l.Amount())
		item := line.CreateElement("cac:Item")
		cbc(item, "Description", l.ProductName)
		if l.SerialNumber != "" {
			id := item.CreateElement("cac:StandardItemIdentification")
			cbc(id, "ID", l.SerialNumber).CreateAttr("schemeName", "IMEI")
		}
		price := line.CreateElement("cac:Price")
		b.amount(price, "PriceAmount", l.UnitPrice)
	}

	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("ubl: serializar: %w", err)
	}
	digest, err := Digest(body)
	if err != nil {
		return nil, "", err
	}
	return append([]byte(xml.Header), body...), digest, nil
}

// writeExtensions resolución DIAN en el primer ExtensionContent. El segundo queda para la firma.
func (b *Builder) writeExtensions(root *etree.Element, company *entity.Company) {
	exts := root.CreateElement("ext:UBLExtensions")
	content := exts.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")
	dianExt := content.CreateElement("sts:DianExtensions")
	ctrl := dianExt.CreateElement("sts:InvoiceControl")
	ctrl.CreateElement("sts:InvoiceAuthorization").SetText(company.Config.DIANResolution)
	rng := ctrl.CreateElement("sts:AuthorizedInvoices")
	rng.CreateElement("sts:Prefix").SetText(company.Config.InvoicePrefix)
	rng.CreateElement("sts:From").SetText(company.Config.DIANRangeFrom)
	rng.CreateElement("sts:To").SetText(company.Config.DIANRangeTo)
	exts.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")
}

func (b *Builder) amount(parent *etree.Element, name string, v decimal.Decimal) {
	cbc(parent, name, v.StringFixed(2)).CreateAttr("currencyID", b.currency)
}

func cbc(parent *etree.Element, name, value string) *etree.Element {
	e := parent.CreateElement("cbc:" + name)
	e.SetText(value)
	return e
}

// party PartyTaxScheme con el documento sin DV y el DV aparte si aplica.
func party(parent *etree.Element, name, document, schemeName string) {
	p := parent.CreateElement("cac:Party")
	cbc(p.CreateElement("cac:PartyName"), "Name", name)
	tax := p.CreateElement("cac:PartyTaxScheme")
	cbc(tax, "RegistrationName", name)
	id := cbc(tax, "CompanyID", onlyBase(document))
	id.CreateAttr("schemeName", schemeName)
	if dv, ok := checkDigit(document); ok && schemeName == dian.IdentificationTypeNIT {
		id.CreateAttr("schemeID", dv)
	}
	scheme := tax.CreateElement("cac:TaxScheme")
	cbc(scheme, "ID", dian.TaxCodeIVA)
	cbc(scheme, "Name", "IVA")
}

// Digest SHA-256 en base64 del XML canonicalizado (C14N 1.0).
func Digest(xmlBytes []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Filenames nombres del XML y del ZIP: {NIT sin DV}{número sin separadores}.
func (b *Builder) Filenames(company *entity.Company, inv *entity.Invoice) (xmlName, zipName string) {
	base := onlyBase(company.NIT) + alnum(inv.Number)
	return base + ".xml", base + ".zip"
}

// Package empaqueta el XML en un ZIP de una sola entrada.
func (b *Builder) Package(xmlBytes []byte, xmlName string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create(xmlName)
	if err != nil {
		return nil, fmt.Errorf("zip: crear entrada %s: %w", xmlName, err)
	}
	if _, err := fw.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("zip: escribir XML: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: cerrar archivo: %w", err)
	}
	return buf.Bytes(), nil
}

// onlyBase dígitos del documento antes del guion del DV.
func onlyBase(document string) string {
	if i := strings.Index(document, "-"); i >= 0 {
		document = document[:i]
	}
	return digits(document)
}

func checkDigit(document string) (string, bool) {
	i := strings.Index(document, "-")
	if i < 0 || i == len(document)-1 {
		return "", false
	}
	return strings.TrimSpace(document[i+1:]), true
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func alnum(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
