package mail

import "time"

// RecipientResult is the per-recipient outcome of a bulk send.
type RecipientResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// BulkMailer delivers one message to many recipients and reports the outcome
// for each. A failed recipient never aborts the rest of the batch.
type BulkMailer interface {
	SendBulkEmail(recipients []string, subject, html string) []RecipientResult
}

// SMTPBulkMailer sends each message through SendMail with a small delay
// between recipients to stay under provider rate limits.
type SMTPBulkMailer struct {
	Delay time.Duration
}

// NewSMTPBulkMailer creates the default bulk mailer.
func NewSMTPBulkMailer() *SMTPBulkMailer {
	return &SMTPBulkMailer{Delay: 100 * time.Millisecond}
}

func (m *SMTPBulkMailer) SendBulkEmail(recipients []string, subject, html string) []RecipientResult {
	results := make([]RecipientResult, 0, len(recipients))

	for i, recipient := range recipients {
		if err := SendMail(recipient, subject, html); err != nil {
			results = append(results, RecipientResult{Email: recipient, Sent: false, Error: err.Error()})
		} else {
			results = append(results, RecipientResult{Email: recipient, Sent: true})
		}

		if m.Delay > 0 && i < len(recipients)-1 {
			time.Sleep(m.Delay)
		}
	}

	return results
}
