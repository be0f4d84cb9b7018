package connectors

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"

	"gestor/internal/storage"
)

// Attachment types the import pipeline can read. Anything else on a
// message does not make it importable by itself.
var importableSuffixes = []string{".pdf", ".xlsx", ".xls", ".csv"}

// FetchService pulls supplier documents from a connector into the store.
// Messages with neither a text body nor a readable attachment are counted
// and dropped at the door instead of clogging the processing queue.
type FetchService struct {
	connector MailConnector
	store     *DocumentStore
}

type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewDocumentStore(db, rawDir),
	}
}

func (s *FetchService) FetchAndStore(mailbox string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(mailbox, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if !hasImportableContent(msg.Raw) {
			result.Skipped++
			continue
		}
		if _, err := s.store.Store(msg, ".eml"); err != nil {
			return FetchResult{}, err
		}
		result.Stored++
	}

	return result, nil
}

// hasImportableContent reports whether a raw message carries anything the
// pipeline could extract products from. Unparseable messages pass: better
// to store junk than to drop a price list over a MIME quirk.
func hasImportableContent(raw []byte) bool {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return true
	}
	if strings.TrimSpace(env.Text) != "" {
		return true
	}
	for _, att := range env.Attachments {
		name := strings.ToLower(strings.TrimSpace(att.FileName))
		for _, suffix := range importableSuffixes {
			if strings.HasSuffix(name, suffix) {
				return true
			}
		}
	}
	return false
}
