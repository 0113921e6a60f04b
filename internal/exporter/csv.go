package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"ctview/pkg/contracts/domain"
)

// CSVOptions configures CSV rendering.
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
	// TimeFormat formats the timestamp column; RFC 3339 with nanoseconds
	// when empty.
	TimeFormat string
}

// WriteSeriesCSV renders a series set as one wide CSV table: a timestamp
// column followed by one column per channel, rows in sample order.
func WriteSeriesCSV(w io.Writer, set domain.SeriesSet, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}
	timeFormat := options.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339Nano
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string{"DateTime"}, set.ChannelIDs()...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rows := rowCount(set)
	record := make([]string, len(set.Channels)+1)
	for i := 0; i < rows; i++ {
		record[0] = set.Channels[0].Points[i].Timestamp.Format(timeFormat)
		for c, ch := range set.Channels {
			record[c+1] = strconv.FormatFloat(ch.Points[i].Value, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return writer.Error()
}

// rowCount returns the common sample count of the set; all channels of
// one record share it by construction, but a short channel must not
// panic the export.
func rowCount(set domain.SeriesSet) int {
	if len(set.Channels) == 0 {
		return 0
	}
	rows := len(set.Channels[0].Points)
	for _, ch := range set.Channels {
		if len(ch.Points) < rows {
			rows = len(ch.Points)
		}
	}
	return rows
}
