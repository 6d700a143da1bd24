package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

func newLotImportService(t *testing.T, db *gorm.DB) *LotImportService {
	t.Helper()

	service, err := NewLotImportService(db, &stubLogWriter{})
	if err != nil {
		t.Fatalf("NewLotImportService: %v", err)
	}
	return service
}

func scheduledAuction(t *testing.T, db *gorm.DB) models.Auction {
	t.Helper()

	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := openAuctionWindow()
	return createTestAuction(t, db, carrier.ID, models.AuctionScheduled, start, end)
}

func buildXlsx(t *testing.T, rows [][]string) []byte {
	t.Helper()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set sheet row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if err := workbook.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}
	return buf.Bytes()
}

func TestImportLotsCSV(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	service := newLotImportService(t, db)

	file := strings.Join([]string{
		"Lot ID,Device Name,Condition,Quantity,Minimum Bid",
		"L-001,Phone Model X,Grade A,25,150.00",
		"L-002,Tablet Model Y,,,",
	}, "\n")

	count, err := service.ImportLots(context.Background(), auction.ID, "lots.csv", []byte(file))
	if err != nil {
		t.Fatalf("ImportLots: %v", err)
	}
	if count != 2 {
		t.Fatalf("imported = %d, want 2", count)
	}

	var lots []models.Lot
	if err := db.Where("auction_id = ?", auction.ID).Order("lot_identifier").Find(&lots).Error; err != nil {
		t.Fatalf("load lots: %v", err)
	}
	if len(lots) != 2 {
		t.Fatalf("stored lots = %d, want 2", len(lots))
	}
	if lots[0].DeviceName != "Phone Model X" || lots[0].Quantity != 25 {
		t.Fatalf("first lot = %+v", lots[0])
	}
	if !lots[0].MinBid.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("first lot min bid = %s, want 150.00", lots[0].MinBid)
	}
	if lots[0].Condition == nil || *lots[0].Condition != "Grade A" {
		t.Fatalf("first lot condition = %v, want Grade A", lots[0].Condition)
	}
	// Defaults apply when optional columns are blank.
	if lots[1].Quantity != 1 || !lots[1].MinBid.IsZero() || lots[1].Condition != nil {
		t.Fatalf("second lot defaults wrong: %+v", lots[1])
	}
}

func TestImportLotsXlsx(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	service := newLotImportService(t, db)

	file := buildXlsx(t, [][]string{
		{"lot_id", "device_name", "qty", "min_bid"},
		{"L-001", "Phone Model X", "5", "40"},
	})

	count, err := service.ImportLots(context.Background(), auction.ID, "lots.xlsx", file)
	if err != nil {
		t.Fatalf("ImportLots: %v", err)
	}
	if count != 1 {
		t.Fatalf("imported = %d, want 1", count)
	}
}

func TestImportLotsRejectsWholeFileOnRowError(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	service := newLotImportService(t, db)

	file := strings.Join([]string{
		"Lot ID,Device Name,Quantity,Minimum Bid",
		"L-001,Phone Model X,5,40",
		"L-002,,5,40",
		"L-003,Tablet Model Y,-1,40",
		"L-001,Duplicate Row,1,10",
	}, "\n")

	_, err := service.ImportLots(context.Background(), auction.ID, "lots.csv", []byte(file))

	var rejected *ErrImportRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want ErrImportRejected", err)
	}
	if len(rejected.Rows) != 3 {
		t.Fatalf("row errors = %d (%v), want 3", len(rejected.Rows), rejected.Rows)
	}

	var count int64
	if err := db.Model(&models.Lot{}).Count(&count).Error; err != nil {
		t.Fatalf("count lots: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no lots stored after rejection, got %d", count)
	}
}

func TestImportLotsRejectsExistingIdentifier(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	service := newLotImportService(t, db)

	file := "Lot ID,Device Name\nL-001,Phone Model X\nL-002,Tablet Model Y\n"
	_, err := service.ImportLots(context.Background(), auction.ID, "lots.csv", []byte(file))

	var rejected *ErrImportRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want ErrImportRejected", err)
	}

	var count int64
	if err := db.Model(&models.Lot{}).Count(&count).Error; err != nil {
		t.Fatalf("count lots: %v", err)
	}
	if count != 1 {
		t.Fatalf("lots = %d, want only the pre-existing one", count)
	}
}

func TestImportLotsMissingRequiredColumn(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	service := newLotImportService(t, db)

	file := "Device Name,Quantity\nPhone Model X,5\n"
	if _, err := service.ImportLots(context.Background(), auction.ID, "lots.csv", []byte(file)); err == nil {
		t.Fatalf("expected error for missing lot identifier column")
	}
}

func TestImportLotsUnsupportedFileType(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	service := newLotImportService(t, db)

	if _, err := service.ImportLots(context.Background(), auction.ID, "lots.pdf", []byte("x")); !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}
}

func TestImportLotsLockedAfterScheduled(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := openAuctionWindow()
	service := newLotImportService(t, db)

	file := "Lot ID,Device Name\nL-001,Phone Model X\n"
	for _, status := range []models.AuctionStatus{models.AuctionActive, models.AuctionClosed, models.AuctionCancelled} {
		auction := createTestAuction(t, db, carrier.ID, status, start, end)
		if _, err := service.ImportLots(context.Background(), auction.ID, "lots.csv", []byte(file)); !errors.Is(err, ErrLotsLocked) {
			t.Fatalf("status %s: err = %v, want ErrLotsLocked", status, err)
		}
	}
}

func TestImportLotsUnknownAuction(t *testing.T) {
	db := openTestDB(t)
	service := newLotImportService(t, db)

	if _, err := service.ImportLots(context.Background(), "missing", "lots.csv", []byte("Lot ID,Device Name\nL-001,X\n")); !errors.Is(err, ErrAuctionNotFound) {
		t.Fatalf("err = %v, want ErrAuctionNotFound", err)
	}
}

func TestUpdateLotWhileScheduled(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	service := newLotImportService(t, db)

	name := "Phone Model X Pro"
	quantity := 12
	minBid := decimal.NewFromInt(80)
	updated, err := service.UpdateLot(context.Background(), lot.ID, UpdateLotInput{
		DeviceName: &name,
		Quantity:   &quantity,
		MinBid:     &minBid,
	})
	if err != nil {
		t.Fatalf("UpdateLot: %v", err)
	}
	if updated.DeviceName != name || updated.Quantity != 12 || !updated.MinBid.Equal(minBid) {
		t.Fatalf("updated lot = %+v", updated)
	}
}

func TestUpdateLotLockedOnceActive(t *testing.T) {
	db := openTestDB(t)
	carrier := createTestCarrier(t, db, "TelNorth")
	start, end := openAuctionWindow()
	auction := createTestAuction(t, db, carrier.ID, models.AuctionActive, start, end)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	service := newLotImportService(t, db)

	name := "Changed"
	if _, err := service.UpdateLot(context.Background(), lot.ID, UpdateLotInput{DeviceName: &name}); !errors.Is(err, ErrLotsLocked) {
		t.Fatalf("err = %v, want ErrLotsLocked", err)
	}
}

func TestUpdateLotValidation(t *testing.T) {
	db := openTestDB(t)
	auction := scheduledAuction(t, db)
	lot := createTestLot(t, db, auction.ID, "L-001", decimal.Zero)
	service := newLotImportService(t, db)

	badQuantity := 0
	if _, err := service.UpdateLot(context.Background(), lot.ID, UpdateLotInput{Quantity: &badQuantity}); err == nil {
		t.Fatalf("expected error for non-positive quantity")
	}

	badMinBid := decimal.NewFromInt(-1)
	if _, err := service.UpdateLot(context.Background(), lot.ID, UpdateLotInput{MinBid: &badMinBid}); err == nil {
		t.Fatalf("expected error for negative min bid")
	}

	if _, err := service.UpdateLot(context.Background(), "missing", UpdateLotInput{}); !errors.Is(err, ErrLotNotFound) {
		t.Fatalf("err = %v, want ErrLotNotFound", err)
	}
}
