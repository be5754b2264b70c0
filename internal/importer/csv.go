package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"compstone/server/internal/models"
	"compstone/server/internal/queue"

	"github.com/sirupsen/logrus"
)

// requiredColumns are the header columns the parser insists on. Every other
// column is optional and degrades to a safe default when absent.
var requiredColumns = []string{"address"}

// ParseComps reads comp records from a CSV stream. Rows with an empty
// address are skipped; numeric fields that fail to parse default to zero
// and are filtered later at the aggregation boundary rather than aborting
// the import.
func ParseComps(r io.Reader) ([]*models.Property, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required CSV column: %s", col)
		}
	}

	var comps []*models.Property
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		address := get("address")
		if address == "" {
			continue
		}

		saleDate := get("sale_date")
		if saleDate == "" {
			saleDate = models.UnknownSaleDate
		}

		comps = append(comps, &models.Property{
			Address:           address,
			PropertyWidth:     parseFloat(get("property_width")),
			PropertyDepth:     parseFloat(get("property_depth")),
			BuildingWidth:     parseFloat(get("building_width")),
			BuildingDepth:     parseFloat(get("building_depth")),
			Stories:           parseInt(get("stories")),
			Floors:            parseInt(get("floors")),
			OriginalSalePrice: parseFloat(get("original_sale_price")),
			SaleDate:          saleDate,
			Renovated:         defaultString(get("renovated"), models.RenovatedNo),
			OriginalDetails:   defaultString(get("original_details"), models.DetailsUnknown),
			TaxClass:          get("tax_class"),
			Occupancy:         get("occupancy"),
			Included:          true,
		})
	}

	return comps, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ImportFile parses a comps CSV and pushes it onto the ingestion queue in
// batches.
func ImportFile(path string, q *queue.CompQueue, batchSize int, logger *logrus.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open comps CSV: %w", err)
	}
	defer f.Close()

	comps, err := ParseComps(f)
	if err != nil {
		return err
	}

	if batchSize <= 0 {
		batchSize = len(comps)
	}
	for start := 0; start < len(comps); start += batchSize {
		end := start + batchSize
		if end > len(comps) {
			end = len(comps)
		}
		if err := q.Push(comps[start:end]); err != nil {
			return fmt.Errorf("failed to enqueue comp batch: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"file":  path,
		"comps": len(comps),
	}).Info("Queued comps CSV for import")
	return nil
}
