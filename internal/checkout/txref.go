package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const txRefPrefix = "ersha"

// NewTxRef returns a payment transaction reference of the form
// ersha-<unix millis>-<random suffix>.
func NewTxRef(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s", txRefPrefix, now.UnixMilli(), suffix)
}
