package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/wasifahmed1991/pc-auction-system/internal/models"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")
var ErrLotsLocked = errors.New("lots cannot be changed once the auction leaves the scheduled state")

// ErrImportRejected carries per-row validation messages; no lots are
// stored when any row fails.
type ErrImportRejected struct {
	Rows []string
}

func (e *ErrImportRejected) Error() string {
	return fmt.Sprintf("lot import rejected: %d row error(s)", len(e.Rows))
}

// lotColumnAliases maps each lot field to the spreadsheet headers it
// may arrive under.
var lotColumnAliases = map[string][]string{
	"lot_identifier": {"lot id", "lot_id", "identifier", "lot_identifier"},
	"device_name":    {"device name", "device_name", "item name"},
	"device_details": {"details", "description", "device_details"},
	"image_url":      {"image url", "image_url", "image"},
	"condition":      {"condition", "grade"},
	"quantity":       {"quantity", "qty"},
	"min_bid":        {"minimum bid", "min_bid", "start price"},
}

type LotImportService struct {
	db         *gorm.DB
	logService LogWriter
}

type lotRow struct {
	line          int
	identifier    string
	deviceName    string
	deviceDetails string
	imageURL      string
	condition     string
	quantity      string
	minBid        string
}

func NewLotImportService(db *gorm.DB, logService LogWriter) (*LotImportService, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if logService == nil {
		return nil, errors.New("log service is nil")
	}

	return &LotImportService{db: db, logService: logService}, nil
}

// ImportLots parses a CSV or XLSX upload and creates the lots in one
// transaction. Any row error rejects the whole file. Imports are only
// allowed while the auction is still scheduled; lots are immutable
// once bidding can start.
func (s *LotImportService) ImportLots(ctx context.Context, auctionID string, filename string, content []byte) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("lot import service is nil")
	}
	if len(content) == 0 {
		return 0, errors.New("file is empty")
	}

	var auction models.Auction
	if err := s.db.WithContext(ctx).Where("id = ?", auctionID).First(&auction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAuctionNotFound
		}
		return 0, fmt.Errorf("load auction: %w", err)
	}
	if auction.Status != models.AuctionScheduled {
		return 0, ErrLotsLocked
	}

	var rows [][]string
	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		rows, err = readCSVRows(content)
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		rows, err = readXlsxRows(content)
	default:
		return 0, ErrUnsupportedFileType
	}
	if err != nil {
		return 0, err
	}

	lots, err := parseLotRows(auction.ID, rows)
	if err != nil {
		failMsg := fmt.Sprintf("import auction=%s file=%s: %v", auction.ID, filename, err)
		_ = s.logService.CreateLog(ctx, nil, LogActionLotImport, LogOutcomeFail, &failMsg)
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rejects []string
		for i := range lots {
			var count int64
			if err := tx.Model(&models.Lot{}).Where("auction_id = ? AND lot_identifier = ?", auction.ID, lots[i].LotIdentifier).Count(&count).Error; err != nil {
				return fmt.Errorf("check lot identifier: %w", err)
			}
			if count > 0 {
				rejects = append(rejects, fmt.Sprintf("lot %s already exists in this auction", lots[i].LotIdentifier))
			}
		}
		if len(rejects) > 0 {
			return &ErrImportRejected{Rows: rejects}
		}
		if err := tx.Create(&lots).Error; err != nil {
			return fmt.Errorf("create lots: %w", err)
		}
		return nil
	})
	if err != nil {
		failMsg := fmt.Sprintf("import auction=%s file=%s: %v", auction.ID, filename, err)
		_ = s.logService.CreateLog(ctx, nil, LogActionLotImport, LogOutcomeFail, &failMsg)
		return 0, err
	}

	msg := fmt.Sprintf("imported lots=%d auction=%s file=%s", len(lots), auction.ID, filename)
	_ = s.logService.CreateLog(ctx, nil, LogActionLotImport, LogOutcomeSuccess, &msg)

	return len(lots), nil
}

// UpdateLot applies an administrative correction to a single lot,
// permitted only while the auction is still scheduled.
func (s *LotImportService) UpdateLot(ctx context.Context, lotID string, in UpdateLotInput) (*models.Lot, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("lot import service is nil")
	}

	var lot models.Lot
	if err := s.db.WithContext(ctx).Where("id = ?", lotID).First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, fmt.Errorf("load lot: %w", err)
	}

	var auction models.Auction
	if err := s.db.WithContext(ctx).Where("id = ?", lot.AuctionID).First(&auction).Error; err != nil {
		return nil, fmt.Errorf("load auction: %w", err)
	}
	if auction.Status != models.AuctionScheduled {
		return nil, ErrLotsLocked
	}

	if in.DeviceName != nil && strings.TrimSpace(*in.DeviceName) != "" {
		lot.DeviceName = strings.TrimSpace(*in.DeviceName)
	}
	if in.DeviceDetails != nil {
		lot.DeviceDetails = in.DeviceDetails
	}
	if in.ImageURL != nil {
		lot.ImageURL = in.ImageURL
	}
	if in.Condition != nil {
		lot.Condition = in.Condition
	}
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, errors.New("quantity must be positive")
		}
		lot.Quantity = *in.Quantity
	}
	if in.MinBid != nil {
		if in.MinBid.IsNegative() {
			return nil, errors.New("min bid cannot be negative")
		}
		lot.MinBid = *in.MinBid
	}

	lot.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).Save(&lot).Error; err != nil {
		return nil, fmt.Errorf("update lot: %w", err)
	}

	return &lot, nil
}

type UpdateLotInput struct {
	DeviceName    *string
	DeviceDetails *string
	ImageURL      *string
	Condition     *string
	Quantity      *int
	MinBid        *decimal.Decimal
}

func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXlsxRows(content []byte) ([][]string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		closeErr := workbook.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("close workbook: %w", closeErr)
		}
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	closeErr := workbook.Close()
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("close workbook: %w", closeErr)
	}

	return rows, nil
}

func parseLotRows(auctionID string, rows [][]string) ([]models.Lot, error) {
	if len(rows) == 0 {
		return nil, errors.New("file has no rows")
	}

	header := rows[0]
	columns := make(map[string]int)
	for field, aliases := range lotColumnAliases {
		for idx, cell := range header {
			name := strings.ToLower(strings.TrimSpace(cell))
			for _, alias := range aliases {
				if name == alias {
					columns[field] = idx
				}
			}
		}
	}
	for _, required := range []string{"lot_identifier", "device_name"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: one of %v", lotColumnAliases[required])
		}
	}

	now := time.Now().UTC()
	var rejects []string
	var lots []models.Lot
	seen := make(map[string]bool)

	for i, row := range rows[1:] {
		parsed := lotRow{
			line:          i + 2,
			identifier:    cellAt(row, columns, "lot_identifier"),
			deviceName:    cellAt(row, columns, "device_name"),
			deviceDetails: cellAt(row, columns, "device_details"),
			imageURL:      cellAt(row, columns, "image_url"),
			condition:     cellAt(row, columns, "condition"),
			quantity:      cellAt(row, columns, "quantity"),
			minBid:        cellAt(row, columns, "min_bid"),
		}

		lot, rowErr := parsed.toLot(auctionID, now)
		if rowErr != nil {
			rejects = append(rejects, fmt.Sprintf("row %d: %v", parsed.line, rowErr))
			continue
		}
		if seen[lot.LotIdentifier] {
			rejects = append(rejects, fmt.Sprintf("row %d: duplicate lot identifier %s in file", parsed.line, lot.LotIdentifier))
			continue
		}
		seen[lot.LotIdentifier] = true
		lots = append(lots, lot)
	}

	if len(rejects) > 0 {
		return nil, &ErrImportRejected{Rows: rejects}
	}
	if len(lots) == 0 {
		return nil, errors.New("file has no lot rows")
	}

	return lots, nil
}

func (r lotRow) toLot(auctionID string, now time.Time) (models.Lot, error) {
	if r.identifier == "" {
		return models.Lot{}, errors.New("lot_identifier is missing or empty")
	}
	if r.deviceName == "" {
		return models.Lot{}, errors.New("device_name is missing or empty")
	}

	quantity := 1
	if r.quantity != "" {
		parsed, err := strconv.Atoi(r.quantity)
		if err != nil || parsed <= 0 {
			return models.Lot{}, fmt.Errorf("invalid quantity %q", r.quantity)
		}
		quantity = parsed
	}

	minBid := decimal.Zero
	if r.minBid != "" {
		parsed, err := decimal.NewFromString(r.minBid)
		if err != nil || parsed.IsNegative() {
			return models.Lot{}, fmt.Errorf("invalid minimum bid %q", r.minBid)
		}
		minBid = parsed
	}

	lot := models.Lot{
		ID:            uuid.NewString(),
		AuctionID:     auctionID,
		LotIdentifier: r.identifier,
		DeviceName:    r.deviceName,
		Quantity:      quantity,
		MinBid:        minBid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.deviceDetails != "" {
		details := r.deviceDetails
		lot.DeviceDetails = &details
	}
	if r.imageURL != "" {
		image := r.imageURL
		lot.ImageURL = &image
	}
	if r.condition != "" {
		condition := r.condition
		lot.Condition = &condition
	}

	return lot, nil
}

func cellAt(row []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
