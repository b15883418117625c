package haproxy

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net"
	"strings"
)

// StatRow is one row of HAProxy's `show stat` output, reduced to the fields
// operators look at first. The full row is kept for table rendering.
type StatRow struct {
	Proxy    string
	Service  string
	Status   string
	Current  string
	Total    string
	CheckRes string
}

// Stats is a parsed `show stat` snapshot.
type Stats struct {
	Header []string
	Rows   [][]string
}

// Summary returns the reduced per-service rows.
func (s *Stats) Summary() []StatRow {
	index := make(map[string]int, len(s.Header))
	for i, name := range s.Header {
		index[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]StatRow, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, StatRow{
			Proxy:    field(row, "pxname"),
			Service:  field(row, "svname"),
			Status:   field(row, "status"),
			Current:  field(row, "scur"),
			Total:    field(row, "stot"),
			CheckRes: field(row, "check_status"),
		})
	}
	return rows
}

// QueryStats asks the stats socket for a `show stat` snapshot.
func (c *Controller) QueryStats(ctx context.Context) (*Stats, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.config.Socket)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to stats socket %s: %w", c.config.Socket, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, "show stat\n"); err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("stats read failed: %w", err)
	}

	return ParseStats(string(data))
}

// ParseStats parses `show stat` CSV output. The first line is a header
// prefixed with "# ", and every row carries a trailing comma.
func ParseStats(raw string) (*Stats, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty stats output")
	}

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse stats CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("stats output has no header")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "# ")
	}
	header = trimTrailingEmpty(header)

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, trimTrailingEmpty(record))
	}

	return &Stats{Header: header, Rows: rows}, nil
}

func trimTrailingEmpty(fields []string) []string {
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}
