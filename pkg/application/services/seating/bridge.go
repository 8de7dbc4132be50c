// Package seating implements the seat-chart round-trip contract
// (spec.md §6): publishing the current assignment as a JSON seat chart
// and re-ingesting edits made against it. It is deliberately thin (spec
// Design Note "Seating bridge") — the engine must remain fully usable,
// and fully testable, without this package ever running.
package seating

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
)

// SeatLot is one lot entry nested under a seat in the published chart.
type SeatLot struct {
	LotID              string  `json:"lot_id"`
	LotKey             string  `json:"lot_key"`
	SourceRowIndex     int     `json:"source_row_index"`
	SourceRowKey       string  `json:"source_row_key"`
	SourceInspectorCol int     `json:"source_inspector_col"`
	ProductNumber      string  `json:"product_number"`
	ProductName        string  `json:"product_name"`
	ShippingDate       string  `json:"shipping_date"`
	InspectionTime     float64 `json:"inspection_time"`
}

// Seat is one inspector's row in the chart. Row/Col describe a physical
// seating layout that has no other representation in this module; the
// bridge assigns them deterministically by roster order (row 0, column
// = roster index) since the source layout is out of scope here.
type Seat struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Row  int       `json:"row"`
	Col  int       `json:"col"`
	Lots []SeatLot `json:"lots"`
}

// UnassignedLot is one lot carried in the chart's unassigned_lots list.
// SourceInspectorCol is nil when the edit clears every slot on the row
// (spec.md §6: "or all slots if source_inspector_col is empty").
type UnassignedLot struct {
	LotID              string  `json:"lot_id"`
	LotKey             string  `json:"lot_key"`
	SourceRowIndex     int     `json:"source_row_index"`
	SourceRowKey       string  `json:"source_row_key"`
	SourceInspectorCol *int    `json:"source_inspector_col,omitempty"`
	ProductNumber      string  `json:"product_number"`
	ProductName        string  `json:"product_name"`
	ShippingDate       string  `json:"shipping_date"`
	InstructionDate    string  `json:"instruction_date"`
}

// Chart is the full published artifact.
type Chart struct {
	Seats          []Seat          `json:"seats"`
	UnassignedLots []UnassignedLot `json:"unassigned_lots"`
}

// Bridge publishes AssignmentRows as a Chart and re-ingests edits back
// onto them.
type Bridge struct{}

// NewBridge returns a ready-to-use Bridge; it carries no state of its
// own (spec.md §9: engine unit tests must not depend on any seat-chart
// I/O, so nothing here is required for a normal run).
func NewBridge() *Bridge {
	return &Bridge{}
}

// Publish builds a Chart from the current rows and inspector roster.
func (b *Bridge) Publish(rows []*entities.AssignmentRow, inspectors []entities.Inspector) *Chart {
	seatByID := make(map[string]*Seat, len(inspectors))
	seats := make([]Seat, len(inspectors))
	for i, ins := range inspectors {
		seats[i] = Seat{ID: ins.InspectorID, Name: ins.Name, Row: 0, Col: i}
		seatByID[ins.InspectorID] = &seats[i]
	}

	var unassigned []UnassignedLot

	for rowIdx, row := range rows {
		rowKey := row.Lot.IdentityKey()
		if row.Status != entities.Assigned || row.CrewSize() == 0 {
			unassigned = append(unassigned, UnassignedLot{
				LotID:           row.Lot.ProductionLotID,
				LotKey:          rowKey,
				SourceRowIndex:  rowIdx,
				SourceRowKey:    rowKey,
				ProductNumber:   row.Lot.ProductNumber,
				ProductName:     row.Lot.ProductName,
				ShippingDate:    shippingDateLabel(row.Lot.ShippingDate),
				InstructionDate: row.Lot.InstructionDate,
			})
			continue
		}
		for col, inspectorID := range row.Slots {
			if inspectorID == "" {
				continue
			}
			seat, ok := seatByID[inspectorID]
			if !ok {
				continue // inspector not in the roster passed to Publish; nothing to attach to
			}
			seat.Lots = append(seat.Lots, SeatLot{
				LotID:              row.Lot.ProductionLotID,
				LotKey:             rowKey,
				SourceRowIndex:     rowIdx,
				SourceRowKey:       rowKey,
				SourceInspectorCol: col,
				ProductNumber:      row.Lot.ProductNumber,
				ProductName:        row.Lot.ProductName,
				ShippingDate:       shippingDateLabel(row.Lot.ShippingDate),
				InspectionTime:     row.InspectionTime.Float64(),
			})
		}
	}

	sortUnassignedByShippingDate(unassigned)
	return &Chart{Seats: seats, UnassignedLots: unassigned}
}

// Marshal renders a Chart as indented JSON.
func (b *Bridge) Marshal(chart *Chart) ([]byte, error) {
	return json.MarshalIndent(chart, "", "  ")
}

// Unmarshal parses a previously published (and possibly edited) Chart.
func (b *Bridge) Unmarshal(data []byte) (*Chart, error) {
	var chart Chart
	if err := json.Unmarshal(data, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}

// ReIngest applies a (possibly edited) Chart back onto rows: seat lots
// re-map to their row by (source_row_key, source_inspector_col) first,
// falling back to lot_key; unassigned_lots clear the named slot, or
// every slot when source_inspector_col is nil. After every edit,
// crew_size and divided_time are recomputed per touched row (spec.md
// §6).
func (b *Bridge) ReIngest(rows []*entities.AssignmentRow, chart *Chart) {
	byRowKey := make(map[string]*entities.AssignmentRow, len(rows))
	for _, row := range rows {
		byRowKey[row.Lot.IdentityKey()] = row
	}

	touched := make(map[*entities.AssignmentRow]bool)

	for _, seat := range chart.Seats {
		for _, lot := range seat.Lots {
			row := locateRow(byRowKey, lot.SourceRowKey, lot.LotKey)
			if row == nil {
				continue
			}
			if lot.SourceInspectorCol >= 0 && lot.SourceInspectorCol < len(row.Slots) {
				row.Slots[lot.SourceInspectorCol] = seat.ID
			} else if !row.HasMember(seat.ID) {
				row.Slots = appendToFirstEmptySlot(row.Slots, seat.ID)
			}
			touched[row] = true
		}
	}

	for _, lot := range chart.UnassignedLots {
		row := locateRow(byRowKey, lot.SourceRowKey, lot.LotKey)
		if row == nil {
			continue
		}
		if lot.SourceInspectorCol == nil {
			row.ClearSlots()
		} else if *lot.SourceInspectorCol >= 0 && *lot.SourceInspectorCol < len(row.Slots) {
			row.Slots[*lot.SourceInspectorCol] = ""
		}
		touched[row] = true
	}

	for row := range touched {
		recomputeRowSizing(row)
	}
}

func locateRow(byRowKey map[string]*entities.AssignmentRow, sourceRowKey, lotKey string) *entities.AssignmentRow {
	if row, ok := byRowKey[sourceRowKey]; ok {
		return row
	}
	if row, ok := byRowKey[lotKey]; ok {
		return row
	}
	return nil
}

func appendToFirstEmptySlot(slots [entities.MaxCrewSize]string, id string) [entities.MaxCrewSize]string {
	for i, s := range slots {
		if s == "" {
			slots[i] = id
			return slots
		}
	}
	return slots
}

// recomputeRowSizing rebuilds crew_size and divided_time from the row's
// final slot contents, and updates team_info/status to match.
func recomputeRowSizing(row *entities.AssignmentRow) {
	crew := row.CrewSize()
	if crew == 0 {
		row.Status = entities.UnassignedRule
		row.DividedTime = entities.ZeroHours
		row.TeamInfo = ""
		return
	}
	row.RequiredCrew = crew
	row.DividedTime = row.InspectionTime.Div(decimal.NewFromInt(int64(crew)))
	row.Status = entities.Assigned
	row.TeamInfo = joinMembers(row.Members())
}

func joinMembers(members []string) string {
	out := ""
	for i, m := range members {
		if i > 0 {
			out += ","
		}
		out += m
	}
	return out
}

func shippingDateLabel(sd entities.ShippingDate) string {
	switch sd.Kind {
	case entities.SameDayCleaning:
		return "same-day-cleaning"
	case entities.AdvanceInspection:
		return "advance-inspection"
	case entities.Unparsable:
		return ""
	default:
		return sd.Date.Format("2006-01-02")
	}
}

// sortUnassignedByShippingDate orders the chart's unassigned_lots by
// (shipping_date, product_number, instruction_date), comparing the
// shipping-date labels as strings.
func sortUnassignedByShippingDate(lots []UnassignedLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].ShippingDate != lots[j].ShippingDate {
			return lots[i].ShippingDate < lots[j].ShippingDate
		}
		if lots[i].ProductNumber != lots[j].ProductNumber {
			return lots[i].ProductNumber < lots[j].ProductNumber
		}
		return lots[i].InstructionDate < lots[j].InstructionDate
	})
}
