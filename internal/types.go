package internal

type SourceKind string

const (
	SourcePDF  SourceKind = "pdf"
	SourceCSV  SourceKind = "csv"
	SourceXLSX SourceKind = "xlsx"
	SourceHTML SourceKind = "html"
	SourceEML  SourceKind = "eml"
	SourceText SourceKind = "text"
)

// FormatKind classifies the dominant column-separation style of a document.
type FormatKind string

const (
	FormatTable   FormatKind = "tabla"
	FormatPipes   FormatKind = "pipes"
	FormatCSV     FormatKind = "csv"
	FormatInvoice FormatKind = "factura"
	FormatSimple  FormatKind = "simple"
	FormatUnknown FormatKind = "desconocido"
)

// FormatGuess is computed once per document and is advisory only: the line
// extractor still tries every strategy per line.
type FormatGuess struct {
	Kind       FormatKind
	Confidence float64
	SampleSize int
}

// CandidateProduct is one extracted, unreconciled record. It is only
// materialized if the line yielded a non-empty code and price and survived
// the price-range and code-length gates of the extractor.
type CandidateProduct struct {
	Code       string
	Name       string
	Category   string
	Price      float64
	Cost       float64
	Stock      int
	MinStock   int
	Unit       string
	Confidence int
	SourceLine string
	LineNumber int
	Strategy   string
	Source     SourceKind
}

// Product is a persisted catalog entry. Identity for reconciliation is the
// code (exact match), not the numeric id.
type Product struct {
	ID        int
	Code      string
	Name      string
	Category  string
	Price     float64
	Cost      float64
	Stock     int
	MinStock  int
	Unit      string
	Source    string
	CreatedAt string
}

// ImportReport summarizes one completed or cancelled import run. Reports
// are append-only: once written to history they are never mutated.
type ImportReport struct {
	ID        int
	File      string
	Source    SourceKind
	New       int
	Updated   int
	Skipped   int
	Errors    int
	Total     int
	Cancelled bool
	Timestamp string
}

// ExtractStats describes how well extraction went over one document, so a
// human can judge quality without reading logs.
type ExtractStats struct {
	LinesProcessed    int
	ProductsFound     int
	SuccessRate       float64
	DominantStrategy  string
	AverageConfidence float64
}

// DocumentRow tracks one intake document: a file dropped into the intake
// directory or a message fetched from the supplier mailbox.
type DocumentRow struct {
	ID         int
	Provider   string
	ExternalID string
	Name       string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

// FetchedDocument is a raw supplier document pulled from a connector before
// it is stored and registered.
type FetchedDocument struct {
	Provider   string
	ExternalID string
	Name       string
	Sender     string
	ReceivedAt string
	Raw        []byte
}

// ResultRow is one exported line of a finished run: extraction provenance
// plus the reconciliation outcome for that candidate.
type ResultRow struct {
	LineNumber int
	Source     string
	RawLine    string
	Code       string
	Name       string
	Category   string
	Price      float64
	Stock      int
	Confidence int
	Strategy   string
	Outcome    string
}
