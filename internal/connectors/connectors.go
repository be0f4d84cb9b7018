package connectors

import "gestor/internal"

// MailConnector fetches unread supplier messages from a mailbox.
type MailConnector interface {
	FetchInbox(mailbox string, max int) ([]internal.FetchedDocument, error)
}
