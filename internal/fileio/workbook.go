package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
)

// Match workbook sheet names.
const (
	SheetFiltered   = "Filtered Results"
	SheetRemovedOwn = "Removed Own"
	SheetRejections = "Rejections"
)

var matchHeader = []interface{}{
	"Checkin", "Checkout",
	"Competitor Room", "Competitor Highlights", "Hotel Link",
	"Competitor Area", "Competitor Occupancy",
	"Competitor Breakfast", "Competitor Nonref", "Price", "Scraping Date",
	"My Room", "My Highlights", "My Area", "My Occupancy",
	"My Breakfast", "My Nonref",
	"Similarity",
}

var rejectionHeader = []interface{}{
	"Checkin", "Competitor Room", "Best Score", "Reason",
}

// WriteMatchWorkbookFile writes one matching run's outcome to disk.
func WriteMatchWorkbookFile(path string, res room.MatchResult) error {
	f, err := buildMatchWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteMatchWorkbook streams one matching run's outcome as .xlsx: genuine
// competitor matches on "Filtered Results", the operator's own listings on
// "Removed Own", and the rejection audit trail on "Rejections".
func WriteMatchWorkbook(w io.Writer, res room.MatchResult) error {
	f, err := buildMatchWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildMatchWorkbook(res room.MatchResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetFiltered); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, sheet := range []string{SheetRemovedOwn, SheetRejections} {
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
	}

	if err := writeRecordSheet(f, SheetFiltered, res.Competitors); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRecordSheet(f, SheetRemovedOwn, res.Own); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRejectionSheet(f, res.Rejections); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRecordSheet(f *excelize.File, sheet string, records []room.MatchRecord) error {
	if err := f.SetSheetRow(sheet, "A1", &matchHeader); err != nil {
		return fmt.Errorf("sheet %q header: %w", sheet, err)
	}
	for i, rec := range records {
		row := []interface{}{
			rec.Checkin, rec.Checkout,
			rec.CompetitorRoom, rec.CompetitorHighlights, rec.CompetitorLink,
			cellFloat(rec.CompetitorArea), cellInt(rec.CompetitorOccupancy),
			rec.CompetitorBreakfast, rec.CompetitorNonref,
			cellFloat(rec.CompetitorPrice), rec.ScrapingDate,
			rec.MyRoom, rec.MyHighlights,
			cellFloat(rec.MyArea), cellInt(rec.MyOccupancy),
			rec.MyBreakfast, rec.MyNonref,
			rec.Similarity,
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func writeRejectionSheet(f *excelize.File, rejections []room.Rejection) error {
	if err := f.SetSheetRow(SheetRejections, "A1", &rejectionHeader); err != nil {
		return fmt.Errorf("sheet %q header: %w", SheetRejections, err)
	}
	for i, rej := range rejections {
		row := []interface{}{rej.Checkin, rej.CompetitorRoom, rej.BestScore, string(rej.Reason)}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("sheet %q row %d: %w", SheetRejections, i+2, err)
		}
		if err := f.SetSheetRow(SheetRejections, addr, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", SheetRejections, i+2, err)
		}
	}
	return nil
}

var offerHeader = []interface{}{
	colRoomType, colOccupancy, colHighlights, colPrice, colOtherInfo,
	colHotelLink, colCheckin, colCheckout, colScrapingDate,
}

// WriteRoomsWorkbookFile writes scraped offers to disk in the dataset
// column layout that ReadRooms consumes.
func WriteRoomsWorkbookFile(path string, offers []room.Offer) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &offerHeader); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for i, o := range offers {
		row := []interface{}{
			o.RoomType, cellInt(o.Occupancy), o.Highlights, cellFloat(o.Price),
			rateInfo(o), o.SourceLink, o.Checkin, o.Checkout, o.ScrapingDate,
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// rateInfo reconstructs the raw rate text column from parsed flags so a
// written dataset round-trips through ReadRooms.
func rateInfo(o room.Offer) string {
	switch {
	case o.Breakfast && o.NonRefundable:
		return "snídaně v ceně; nevratná rezervace"
	case o.Breakfast:
		return "snídaně v ceně"
	case o.NonRefundable:
		return "nevratná rezervace"
	}
	return ""
}

func cellFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func cellInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
