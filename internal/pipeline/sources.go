package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"gestor/internal"
	"gestor/internal/util"
)

// ReadPDF extracts the plain text of every page, newline-joined. Page
// boundaries collapse into the single document string; the text extractor
// does not care where a page ended.
func ReadPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("leyendo PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return normalizeLineBreaks(sb.String()), nil
}

// Accepted header spellings per logical column, matched after lowercasing
// and accent folding. Resolved once per document, not per row.
var headerAliases = map[string][]string{
	"codigo":      {"codigo", "cod", "ref", "sku"},
	"nombre":      {"nombre", "descripcion", "producto", "detalle"},
	"categoria":   {"categoria", "rubro"},
	"precio":      {"precio", "precio venta", "precio unit", "valor"},
	"costo":       {"costo", "precio costo"},
	"stock":       {"stock", "cantidad", "existencia"},
	"stockminimo": {"stockminimo", "stock minimo", "stock min", "minimo"},
	"unidad":      {"unidad", "unid", "um"},
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

func foldHeader(h string) string {
	return strings.TrimSpace(strings.ToLower(accentFolder.Replace(h)))
}

// resolveColumns maps logical field -> column index for one header row.
func resolveColumns(headers []string) map[string]int {
	out := map[string]int{}
	for i, h := range headers {
		folded := foldHeader(h)
		for field, aliases := range headerAliases {
			if _, taken := out[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if folded == alias {
					out[field] = i
					break
				}
			}
		}
	}
	return out
}

// ParseCSV maps comma/semicolon-separated rows onto candidates using the
// fixed column order codigo,nombre,categoria,precio,stock,stockMinimo.
// Rows with fewer than three columns are skipped. Prices go through a
// plain float parse, not the locale-aware normalizer: the CSV path has
// always behaved that way and the tests pin it.
func ParseCSV(content []byte, sep rune, hasHeaders bool, cfg ImportConfig, gen *util.CodeGenerator) ([]internal.CandidateProduct, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	out := make([]internal.CandidateProduct, 0)
	rowNo := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leyendo CSV: %w", err)
		}
		rowNo++
		if hasHeaders && rowNo == 1 {
			continue
		}
		if len(record) < 3 || strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}

		code := strings.TrimSpace(record[0])
		if code == "" {
			code = gen.Next()
		}
		name := strings.TrimSpace(record[1])
		if name == "" {
			name = "Sin nombre"
		}
		category := strings.TrimSpace(record[2])
		if category == "" {
			category = "General"
		}

		out = append(out, internal.CandidateProduct{
			Code:       code,
			Name:       name,
			Category:   category,
			Price:      plainFloat(cell(record, 3)),
			Stock:      plainInt(cell(record, 4)),
			MinStock:   plainIntDefault(cell(record, 5), 5),
			SourceLine: strings.Join(record, string(sep)),
			LineNumber: rowNo,
			Strategy:   "csv-columnas",
			Source:     internal.SourceCSV,
		})
	}
	return out, nil
}

// ParseXLSX reads the first sheet, resolves header aliases from the first
// row and maps the remaining rows onto candidates.
func ParseXLSX(content []byte, cfg ImportConfig, gen *util.CodeGenerator) ([]internal.CandidateProduct, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("leyendo Excel: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := resolveColumns(rows[0])
	out := make([]internal.CandidateProduct, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if c := mapAliasedRow(row, cols, i+2, internal.SourceXLSX, gen); c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// ParseHTML scans the document for the first table whose header row
// resolves a code or name column and maps its body rows like the XLSX
// path. Supplier price lists saved as web pages land here.
func ParseHTML(content []byte, cfg ImportConfig, gen *util.CodeGenerator) ([]internal.CandidateProduct, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("leyendo HTML: %w", err)
	}

	out := make([]internal.CandidateProduct, 0)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cellSel *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(cellSel.Text()))
		})
		cols := resolveColumns(headers)
		if _, okCode := cols["codigo"]; !okCode {
			if _, okName := cols["nombre"]; !okName {
				return true
			}
		}

		rowNo := 1
		rows.Slice(1, rows.Length()).Each(func(_ int, rowSel *goquery.Selection) {
			cells := []string{}
			rowSel.Find("th,td").Each(func(_ int, cellSel *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cellSel.Text()))
			})
			rowNo++
			if c := mapAliasedRow(cells, cols, rowNo, internal.SourceHTML, gen); c != nil {
				out = append(out, *c)
			}
		})
		return false
	})

	return out, nil
}

// ReadEML parses a supplier mail: the text body feeds the free-text
// extractor, recognized attachments go to their own readers, and all
// candidates merge in attachment order.
func ReadEML(raw []byte, cfg ImportConfig, gen *util.CodeGenerator) ([]internal.CandidateProduct, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("leyendo correo: %w", err)
	}

	out := make([]internal.CandidateProduct, 0)
	if strings.TrimSpace(env.Text) != "" {
		res := ExtractProductsFromText(normalizeLineBreaks(env.Text), cfg)
		for i := range res.Products {
			res.Products[i].Source = internal.SourceEML
		}
		out = append(out, res.Products...)
	}

	for _, att := range env.Attachments {
		lower := strings.ToLower(strings.TrimSpace(att.FileName))
		var extra []internal.CandidateProduct
		var attErr error
		switch {
		case strings.HasSuffix(lower, ".pdf"):
			text, err := ReadPDF(att.Content)
			if err != nil {
				attErr = err
				break
			}
			res := ExtractProductsFromText(text, cfg)
			extra = res.Products
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			extra, attErr = ParseXLSX(att.Content, cfg, gen)
		case strings.HasSuffix(lower, ".csv"):
			extra, attErr = ParseCSV(att.Content, ',', true, cfg, gen)
		default:
			continue
		}
		if attErr != nil {
			fmt.Printf("adjunto %s descartado: %v\n", att.FileName, attErr)
			continue
		}
		for i := range extra {
			extra[i].Source = internal.SourceEML
		}
		out = append(out, extra...)
	}

	return out, nil
}

func mapAliasedRow(cells []string, cols map[string]int, rowNo int, source internal.SourceKind, gen *util.CodeGenerator) *internal.CandidateProduct {
	if len(cells) == 0 || strings.TrimSpace(strings.Join(cells, "")) == "" {
		return nil
	}

	pick := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	code := pick("codigo")
	if code == "" {
		code = gen.Next()
	}
	name := pick("nombre")
	if name == "" {
		name = "Sin nombre"
	}
	category := pick("categoria")
	if category == "" {
		category = "General"
	}
	unit := pick("unidad")
	if unit == "" {
		unit = "un"
	}

	return &internal.CandidateProduct{
		Code:       code,
		Name:       name,
		Category:   category,
		Price:      plainFloat(pick("precio")),
		Cost:       plainFloat(pick("costo")),
		Stock:      plainInt(pick("stock")),
		MinStock:   plainIntDefault(pick("stockminimo"), 5),
		Unit:       unit,
		SourceLine: strings.Join(cells, " | "),
		LineNumber: rowNo,
		Strategy:   "columnas-alias",
		Source:     source,
	}
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

// plainFloat is the column-path price parser: a bare float parse with zero
// on failure, deliberately NOT NormalizePrice.
func plainFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func plainInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func plainIntDefault(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return v
}
