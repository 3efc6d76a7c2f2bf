package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/painelhub/painelcore/internal/painelsrv/db/models"
	"github.com/painelhub/painelcore/internal/painelsrv/refresh"
)

var (
	readyLabel    = color.New(color.FgGreen)
	updatingLabel = color.New(color.FgYellow)
	devLabel      = color.New(color.FgCyan)
)

const timeLayout = "2006-01-02 15:04:05"

// statusLabel colors the known statuses; anything else renders unstyled so
// an off-vocabulary value is immediately visible.
func statusLabel(status string) string {
	switch status {
	case models.StatusReady:
		return readyLabel.Sprintf("%-17s", status)
	case models.StatusUpdating:
		return updatingLabel.Sprintf("%-17s", status)
	case models.StatusUnderDevelopment:
		return devLabel.Sprintf("%-17s", status)
	default:
		return fmt.Sprintf("%-17s", status)
	}
}

func lastAccess(p models.Product) string {
	if p.Virtual() {
		return "-"
	}
	if !p.LastAccess.Valid {
		return "never accessed"
	}
	return p.LastAccess.Time.Format(timeLayout)
}

func printProducts(products []models.Product) {
	for _, p := range products {
		fmt.Printf("  %-28s %s  %s\n", p.Name, statusLabel(p.Status), lastAccess(p))
	}
}

func describeChange(ch refresh.Change) string {
	switch ch.Kind {
	case refresh.ChangeAdded:
		return okLabel.Sprintf("+ %s added", ch.Product.Name)
	case refresh.ChangeRemoved:
		return errorLabel.Sprintf("- %s removed", ch.Product.Name)
	case refresh.ChangeStatusChanged:
		return updatingLabel.Sprintf("~ %s: %s -> %s", ch.Product.Name, ch.FromStatus, ch.Product.Status)
	case refresh.ChangeTouched:
		return fmt.Sprintf("~ %s accessed", ch.Product.Name)
	default:
		return fmt.Sprintf("~ %s changed", ch.Product.Name)
	}
}

// productJSON is the wire shape for -j output.
type productJSON struct {
	ID         *int64 `json:"id,omitempty"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	LastAccess string `json:"last_access,omitempty"`
	Virtual    bool   `json:"virtual,omitempty"`
}

func toProductJSON(p models.Product) productJSON {
	out := productJSON{
		Name:    p.Name,
		Status:  p.Status,
		Virtual: p.Virtual(),
	}
	if p.ID.Valid {
		id := p.ID.Int64
		out.ID = &id
	}
	if p.LastAccess.Valid {
		out.LastAccess = p.LastAccess.Time.Format(time.RFC3339)
	}
	return out
}

func toProductsJSON(products []models.Product) []productJSON {
	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	return out
}

type changeJSON struct {
	Kind       string `json:"kind"`
	Key        string `json:"key"`
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	FromStatus string `json:"from_status,omitempty"`
}

type cycleJSON struct {
	ID        string        `json:"id"`
	Seq       uint64        `json:"seq"`
	Started   string        `json:"started"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Error     string        `json:"error,omitempty"`
	Products  []productJSON `json:"products"`
	Changes   []changeJSON  `json:"changes,omitempty"`
}

func toCycleJSON(c refresh.Cycle) cycleJSON {
	out := cycleJSON{
		ID:        c.ID,
		Seq:       c.Seq,
		Started:   c.Started.Format(time.RFC3339),
		ElapsedMS: c.Elapsed.Milliseconds(),
		Products:  toProductsJSON(c.Products),
	}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	for _, ch := range c.Diff {
		out.Changes = append(out.Changes, changeJSON{
			Kind:       string(ch.Kind),
			Key:        ch.Key,
			Name:       ch.Product.Name,
			Status:     ch.Product.Status,
			FromStatus: ch.FromStatus,
		})
	}
	return out
}
