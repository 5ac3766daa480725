package anomaly

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// invoice dates are month/day/year
const invoiceDateLayout = "01/02/2006"

// HighUnitPriceThreshold flags individual line items regardless of what the
// outlier model thinks.
const HighUnitPriceThreshold = 100.0

// DateWindow is the contract period an invoice date must fall into,
// inclusive on both ends.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Report is the analyzer's annotated outcome for one invoice.
type Report struct {
	Status  entity.Status         `json:"status"`
	Message string                `json:"message"`
	Invoice *entity.InvoiceRecord `json:"invoice,omitempty"`
}

// Analyzer validates required fields, checks the invoice date against a
// contract window, flags high-priced items, and runs the outlier model over
// (unit_price, quantity) pairs. Validation findings are warnings on the
// record, never errors.
type Analyzer struct {
	logger *slog.Logger
	forest ForestConfig
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger, forest: DefaultForestConfig()}
}

// Analyze annotates the record in place and returns the overall status.
// A record missing any required field short-circuits: no further analysis.
func (a *Analyzer) Analyze(inv *entity.InvoiceRecord, window *DateWindow) Report {
	if inv == nil {
		return Report{Status: entity.StatusError, Message: "Invalid invoice data"}
	}

	if missing := inv.MissingRequired(); len(missing) > 0 {
		a.logger.Warn("analyze.missing_fields", "fields", missing)
		return Report{
			Status:  entity.StatusWarning,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
			Invoice: inv,
		}
	}

	var issues []string

	if window != nil && inv.InvoiceDate != "" {
		if d, err := time.Parse(invoiceDateLayout, inv.InvoiceDate); err != nil {
			issues = append(issues, "Unable to parse invoice date format.")
		} else if d.Before(window.Start) || d.After(window.End) {
			issues = append(issues, "Invoice date is outside the contract period.")
		}
	}

	if len(inv.LineItems) > 0 {
		for _, item := range inv.LineItems {
			if item.UnitPrice != nil && *item.UnitPrice > HighUnitPriceThreshold {
				issues = append(issues, fmt.Sprintf("High unit price detected: %v for %s", *item.UnitPrice, item.Description))
			}
		}

		if outliers := a.detectOutliers(inv); len(outliers) > 0 {
			inv.AnomalousItems = outliers
			issues = append(issues, "Potential fraud/anomalies detected via machine learning model.")
		}
	}

	if len(issues) > 0 {
		inv.Warnings = issues
		a.logger.Info("analyze.done", "status", "warning", "issues", len(issues))
		return Report{Status: entity.StatusWarning, Message: "Analysis completed with warnings", Invoice: inv}
	}
	a.logger.Info("analyze.done", "status", "success")
	return Report{Status: entity.StatusSuccess, Message: "No issues detected", Invoice: inv}
}

// detectOutliers fits the isolation forest on items that carry both numeric
// values; the rest stay in line_items but cannot be scored. Labels follow
// the contamination quantile: a point is an outlier when its (negated)
// score falls strictly below the quantile offset.
func (a *Analyzer) detectOutliers(inv *entity.InvoiceRecord) []entity.AnomalousLineItem {
	var pts []point
	var idx []int
	for i, item := range inv.LineItems {
		if item.UnitPrice != nil {
			pts = append(pts, point{*item.UnitPrice, item.Quantity})
			idx = append(idx, i)
		}
	}
	if len(pts) == 0 {
		return nil
	}

	forest := FitForest(a.forest, pts)

	scores := make([]float64, len(pts))
	for i, p := range pts {
		scores[i] = -forest.Score(p)
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	offset := percentile(sorted, 100*a.forest.Contamination)

	var out []entity.AnomalousLineItem
	for i, s := range scores {
		if s < offset {
			out = append(out, entity.AnomalousLineItem{
				LineItem:     inv.LineItems[idx[i]],
				AnomalyScore: s - offset,
				IsAnomaly:    -1,
			})
		}
	}
	return out
}

// Explain produces a one-line rationale for a flagged item. Selection is
// priority-ordered, not combined.
func Explain(item entity.LineItem) string {
	if item.UnitPrice != nil && *item.UnitPrice > HighUnitPriceThreshold {
		return "This item has a high unit price which may be unusual for this type of product."
	}
	if item.Quantity > 10 {
		return "High quantity detected, might be bulk order or mis-entry."
	}
	return "Anomaly detection based on unit price and quantity patterns."
}
