package projection

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowcast-dev/flowcast/internal/model"
)

// PointsHeader is the CSV header for exported projection series.
const PointsHeader = "date,entity,timeframe,scenario,starting_cash,inflows,outflows,ending_cash,is_negative"

const (
	pointFields   = 9
	dateFormat    = "2006-01-02"
	colDate       = 0
	colEntity     = 1
	colTimeframe  = 2
	colScenario   = 3
	colStarting   = 4
	colInflows    = 5
	colOutflows   = 6
	colEnding     = 7
	colIsNegative = 8
)

// WritePoints writes a projection series as CSV (including header).
func WritePoints(w io.Writer, points []model.ProjectionDataPoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(PointsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, pt := range points {
		if err := cw.Write(MarshalPoint(pt)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadPoints reads a projection series from CSV.
func ReadPoints(r io.Reader) ([]model.ProjectionDataPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = pointFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading projection CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var points []model.ProjectionDataPoint
	for i, rec := range records[1:] {
		pt, err := UnmarshalPoint(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		points = append(points, pt)
	}
	return points, nil
}

// MarshalPoint converts a data point to a CSV row.
func MarshalPoint(pt model.ProjectionDataPoint) []string {
	row := make([]string, pointFields)
	row[colDate] = pt.Date.Format(dateFormat)
	row[colEntity] = pt.Entity
	row[colTimeframe] = string(pt.Timeframe)
	row[colScenario] = string(pt.Scenario)
	row[colStarting] = pt.StartingCash.StringFixed(2)
	row[colInflows] = pt.Inflows.StringFixed(2)
	row[colOutflows] = pt.Outflows.StringFixed(2)
	row[colEnding] = pt.EndingCash.StringFixed(2)
	row[colIsNegative] = strconv.FormatBool(pt.IsNegative)
	return row
}

// UnmarshalPoint converts a CSV row to a data point.
func UnmarshalPoint(record []string) (model.ProjectionDataPoint, error) {
	if len(record) != pointFields {
		return model.ProjectionDataPoint{}, fmt.Errorf("expected %d fields, got %d", pointFields, len(record))
	}

	d, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.ProjectionDataPoint{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amounts := make([]decimal.Decimal, 4)
	for i, col := range []int{colStarting, colInflows, colOutflows, colEnding} {
		amounts[i], err = decimal.NewFromString(record[col])
		if err != nil {
			return model.ProjectionDataPoint{}, fmt.Errorf("parsing %s %q: %w",
				strings.Split(PointsHeader, ",")[col], record[col], err)
		}
	}

	isNegative, err := strconv.ParseBool(record[colIsNegative])
	if err != nil {
		return model.ProjectionDataPoint{}, fmt.Errorf("parsing is_negative %q: %w", record[colIsNegative], err)
	}

	return model.ProjectionDataPoint{
		Date:         d,
		StartingCash: amounts[0],
		Inflows:      amounts[1],
		Outflows:     amounts[2],
		EndingCash:   amounts[3],
		Entity:       record[colEntity],
		Timeframe:    model.Timeframe(record[colTimeframe]),
		Scenario:     model.ReliabilityScenario(record[colScenario]),
		IsNegative:   isNegative,
	}, nil
}

// EventsHeader is the CSV header for exported event drill-downs.
const EventsHeader = "date,entity,direction,category,amount,contract_id,source,priority"

const (
	eventFields    = 8
	colEvDate      = 0
	colEvEntity    = 1
	colEvDirection = 2
	colEvCategory  = 3
	colEvAmount    = 4
	colEvContract  = 5
	colEvSource    = 6
	colEvPriority  = 7
)

// WriteEvents writes cash events as CSV (including header).
func WriteEvents(w io.Writer, events []model.CashEvent) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(EventsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, ev := range events {
		if err := cw.Write(MarshalEvent(ev)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalEvent converts a cash event to a CSV row.
func MarshalEvent(ev model.CashEvent) []string {
	row := make([]string, eventFields)
	row[colEvDate] = ev.Date.Format(dateFormat)
	row[colEvEntity] = ev.Entity
	row[colEvDirection] = string(ev.Direction)
	row[colEvCategory] = string(ev.Category)
	row[colEvAmount] = ev.Amount.StringFixed(2)
	row[colEvContract] = strconv.Itoa(ev.ContractID)
	row[colEvSource] = ev.Source
	row[colEvPriority] = strconv.Itoa(ev.Priority)
	return row
}
