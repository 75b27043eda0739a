package tsdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"

	"welltrend/internal/metrics"
)

const (
	InfluxName = "external"

	defaultInfluxTable = "trend_points"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// InfluxQuerier runs parameterized SQL against InfluxDB 3.
type InfluxQuerier interface {
	// QuerySQL executes query with named $parameters and returns each row as a map.
	QuerySQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Close() error
}

// SDKInfluxClient implements InfluxQuerier with the official InfluxDB 3 client.
type SDKInfluxClient struct {
	client *influxdb3.Client
}

func NewSDKInfluxClient(host, token, database string) (*SDKInfluxClient, error) {
	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     host,
		Token:    token,
		Database: database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create InfluxDB client: %w", err)
	}
	return &SDKInfluxClient{client: client}, nil
}

func (c *SDKInfluxClient) QuerySQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	iterator, err := c.client.QueryWithParameters(ctx, query, influxdb3.QueryParameters(params))
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	var results []map[string]any
	for iterator.Next() {
		value := iterator.Value()
		row := make(map[string]any, len(value))
		for k, v := range value {
			row[k] = v
		}
		results = append(results, row)
	}
	if err := iterator.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}
	return results, nil
}

func (c *SDKInfluxClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

type InfluxConfig struct {
	Logger *slog.Logger
	Client InfluxQuerier
	// Table holds one row per point with tags node_id, address and field value.
	Table string
}

func (c *InfluxConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("influxdb client is required")
	}
	if c.Table == "" {
		c.Table = defaultInfluxTable
	}
	if !identPattern.MatchString(c.Table) {
		return fmt.Errorf("invalid influxdb table name %q", c.Table)
	}
	return nil
}

// Influx is the external time-series backend.
type Influx struct {
	log    *slog.Logger
	client InfluxQuerier
	table  string
}

func NewInflux(cfg InfluxConfig) (*Influx, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Influx{log: cfg.Logger, client: cfg.Client, table: cfg.Table}, nil
}

func (s *Influx) Name() string { return InfluxName }

func (s *Influx) Close() error { return s.client.Close() }

func (s *Influx) RecordedAddresses(ctx context.Context, nodeID string) ([]int, error) {
	defer observe(InfluxName, "recorded_addresses", time.Now())

	query := fmt.Sprintf(`SELECT DISTINCT address FROM "%s" WHERE node_id = $node_id`, s.table)
	rows, err := s.client.QuerySQL(ctx, query, map[string]any{"node_id": nodeID})
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(InfluxName, "recorded_addresses").Inc()
		return nil, fmt.Errorf("query recorded addresses: %w", err)
	}
	addrs := make([]int, 0, len(rows))
	for _, row := range rows {
		a, err := toInt(row["address"])
		if err != nil {
			s.log.Warn("skipping row with invalid address", "node", nodeID, "error", err)
			continue
		}
		addrs = append(addrs, a)
	}
	return unionAddresses(addrs, nil), nil
}

func (s *Influx) Values(ctx context.Context, nodeID string, addresses []int, start, end time.Time) ([]Point, error) {
	if len(addresses) == 0 {
		return []Point{}, nil
	}
	defer observe(InfluxName, "values", time.Now())

	params := map[string]any{
		"node_id": nodeID,
		"start":   start.UTC().Format(time.RFC3339Nano),
		"end":     end.UTC().Format(time.RFC3339Nano),
	}
	placeholders := make([]string, 0, len(addresses))
	for i, a := range addresses {
		name := "a" + strconv.Itoa(i)
		params[name] = strconv.Itoa(a)
		placeholders = append(placeholders, "$"+name)
	}
	query := fmt.Sprintf(
		`SELECT time, address, value FROM "%s" WHERE node_id = $node_id AND address IN (%s) AND time >= to_timestamp($start) AND time <= to_timestamp($end) ORDER BY time, address`,
		s.table, strings.Join(placeholders, ", "),
	)

	rows, err := s.client.QuerySQL(ctx, query, params)
	if err != nil {
		metrics.BackendQueryErrors.WithLabelValues(InfluxName, "values").Inc()
		return nil, fmt.Errorf("query values: %w", err)
	}
	out := make([]Point, 0, len(rows))
	for _, row := range rows {
		p, err := pointFromRow(nodeID, row)
		if err != nil {
			s.log.Warn("skipping malformed point", "node", nodeID, "error", err)
			continue
		}
		out = append(out, p)
	}
	SortPoints(out)
	return out, nil
}

func pointFromRow(nodeID string, row map[string]any) (Point, error) {
	addr, err := toInt(row["address"])
	if err != nil {
		return Point{}, err
	}
	ts, ok := row["time"].(time.Time)
	if !ok {
		return Point{}, fmt.Errorf("unexpected time %T", row["time"])
	}
	val, err := toFloat(row["value"])
	if err != nil {
		return Point{}, err
	}
	return Point{NodeID: nodeID, Address: addr, Timestamp: ts.UTC(), Value: val}, nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	case int64:
		return int(x), nil
	case int:
		return x, nil
	case uint64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("unexpected address %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("unexpected value %T", v)
	}
}
