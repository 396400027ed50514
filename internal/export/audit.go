package export

import (
	"io"
	"strings"

	"github.com/opsdesk/duty-roster/internal/audit"
)

// WriteAuditText renders persisted audit entries as the same readable text an
// in-flight generation produces.
func WriteAuditText(w io.Writer, entries []audit.Entry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Describe())
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
