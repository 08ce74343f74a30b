package service

import (
    "bytes"
    "context"
    "fmt"

    "github.com/xuri/excelize/v2"

    "github.com/hostellog/hostel-admin/internal/access"
    "github.com/hostellog/hostel-admin/internal/model"
    "github.com/hostellog/hostel-admin/internal/repository"
)

const (
    guestSheet = "Guests"
    roomSheet  = "Rooms"
)

var guestRegisterHeader = []string{
    "Full Name", "Phone", "Email", "Room", "Status", "Join Date", "Date of Birth",
    "Parent Name", "Parent Contact", "Purpose", "Permanent Address", "Office Address",
    "Government ID", "Paying Amount", "Advance Amount",
}

var roomRegisterHeader = []string{"Room", "Sharing", "Occupied Beds", "Free Beds", "Status", "Rent"}

// Exporter writes the guest register as an .xlsx workbook.
type Exporter struct {
    rooms  *repository.RoomRepo
    guests *repository.GuestRepo
}

func NewExporter(rooms *repository.RoomRepo, guests *repository.GuestRepo) *Exporter {
    return &Exporter{rooms: rooms, guests: guests}
}

// GuestRegister builds a workbook with one sheet of guests and one of
// rooms for the requested hostel (0 = every hostel in scope).  status
// filters the guest sheet when non-empty.
func (e *Exporter) GuestRegister(ctx context.Context, scope access.Scope, hostelID uint64, status model.GuestStatus) ([]byte, error) {
    hid, ok := scope.Filter(hostelID)
    if !ok {
        return nil, repository.ErrForbidden
    }
    rooms, err := e.rooms.List(ctx, repository.RoomFilter{HostelID: hid})
    if err != nil {
        return nil, err
    }
    guests, err := e.guests.List(ctx, repository.GuestFilter{HostelID: hid, Status: status})
    if err != nil {
        return nil, err
    }
    return buildRegister(rooms, guests)
}

func buildRegister(rooms []*model.Room, guests []*model.Guest) ([]byte, error) {
    f := excelize.NewFile()
    defer f.Close()

    if err := f.SetSheetName("Sheet1", guestSheet); err != nil {
        return nil, fmt.Errorf("rename sheet: %w", err)
    }
    if _, err := f.NewSheet(roomSheet); err != nil {
        return nil, fmt.Errorf("create sheet: %w", err)
    }
    headerStyle, err := f.NewStyle(&excelize.Style{
        Font: &excelize.Font{Bold: true},
        Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
    })
    if err != nil {
        return nil, fmt.Errorf("header style: %w", err)
    }

    roomNumber := make(map[uint64]string, len(rooms))
    roomRows := make([][]any, 0, len(rooms))
    for _, r := range rooms {
        roomNumber[r.ID] = r.RoomNumber
        roomRows = append(roomRows, []any{r.RoomNumber, r.SharingType, r.OccupiedBeds, r.FreeBeds(), string(r.Status), money(r.RentAmountCents)})
    }

    guestRows := make([][]any, 0, len(guests))
    for _, g := range guests {
        room := ""
        if g.RoomID != nil {
            room = roomNumber[*g.RoomID]
        }
        guestRows = append(guestRows, []any{
            g.FullName, g.Phone, str(g.Email), room, string(g.Status), g.JoinDate.Format("2006-01-02"), date(g),
            str(g.ParentName), str(g.ParentContact), str(g.Purpose), str(g.PermanentAddress), str(g.OfficeAddress),
            str(g.GovernmentID), money(g.PayingAmountCents), money(g.AdvanceAmountCents),
        })
    }

    if err := writeSheet(f, guestSheet, guestRegisterHeader, guestRows, headerStyle); err != nil {
        return nil, err
    }
    if err := writeSheet(f, roomSheet, roomRegisterHeader, roomRows, headerStyle); err != nil {
        return nil, err
    }

    var buf bytes.Buffer
    if _, err := f.WriteTo(&buf); err != nil {
        return nil, fmt.Errorf("write workbook: %w", err)
    }
    return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
    for col, h := range header {
        cell, err := excelize.CoordinatesToCellName(col+1, 1)
        if err != nil {
            return err
        }
        if err := f.SetCellValue(sheet, cell, h); err != nil {
            return fmt.Errorf("set header %s: %w", cell, err)
        }
    }
    last, _ := excelize.ColumnNumberToName(len(header))
    if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
        return fmt.Errorf("header style: %w", err)
    }
    if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
        return err
    }
    for i, row := range rows {
        cell, err := excelize.CoordinatesToCellName(1, i+2)
        if err != nil {
            return err
        }
        if err := f.SetSheetRow(sheet, cell, &row); err != nil {
            return fmt.Errorf("write row %d: %w", i+2, err)
        }
    }
    return nil
}

func str(p *string) string {
    if p == nil {
        return ""
    }
    return *p
}

func date(g *model.Guest) string {
    if g.DateOfBirth == nil {
        return ""
    }
    return g.DateOfBirth.Format("2006-01-02")
}

func money(cents uint32) float64 { return float64(cents) / 100 }
