package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/tealeg/xlsx/v2"

	"deal-checker/internal/model"
	"deal-checker/internal/repository"
	"deal-checker/pkg/logger"
	"deal-checker/pkg/utils"
)

const historySheetName = "history"

var historyHeader = []string{
	"timestamp", "unique_ad_id", "brand", "model", "year", "mileage_mi", "price_usd", "location",
	"vin", "seller_type", "title_status", "deal_score", "classification",
	"roi_expected", "roi_optimistic", "roi_pessimistic", "roi_confidence",
}

type HistoryExportService interface {
	// Export writes the latest records, newest first, as a spreadsheet. A
	// non-positive limit exports everything the store holds.
	Export(ctx context.Context, w io.Writer, limit int) (int, error)
}

type historyExportService struct {
	log         *logger.Logger
	historyRepo repository.HistoryRepository
}

func NewHistoryExportService(log *logger.Logger, historyRepo repository.HistoryRepository) *historyExportService {
	return &historyExportService{log: log, historyRepo: historyRepo}
}

func (h *historyExportService) Export(ctx context.Context, w io.Writer, limit int) (int, error) {
	var (
		records []model.HistoryRecord
		err     error
	)
	if limit > 0 {
		records, err = h.historyRepo.Latest(ctx, limit)
	} else {
		records, err = h.historyRepo.Load(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load history: %w", err)
	}

	f, err := HistoryWorkbook(records)
	if err != nil {
		return 0, err
	}
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	h.log.InfoContext(ctx, "History exported", logger.IntField("rows", len(records)))
	return len(records), nil
}

// HistoryWorkbook lays records out one per row under a header row.
func HistoryWorkbook(records []model.HistoryRecord) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(historySheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, name := range historyHeader {
		header.AddCell().SetString(name)
	}

	for _, r := range records {
		row := sheet.AddRow()
		for _, v := range historyRow(r) {
			row.AddCell().SetString(v)
		}
	}
	return f, nil
}

func historyRow(r model.HistoryRecord) []string {
	year := ""
	if r.Year > 0 {
		year = strconv.Itoa(r.Year)
	}
	return []string{
		utils.PrettyDate(r.Timestamp),
		r.UniqueAdID,
		r.Brand,
		r.VehicleModel,
		year,
		formatNumber(r.Miles, 0),
		formatNumber(r.PriceUSD, 0),
		r.Location,
		r.VIN,
		r.SellerType,
		r.TitleStatus,
		formatNumber(r.DealScore, 2),
		r.Classification,
		formatNumber(r.ROIExpected, 2),
		formatNumber(r.ROIOptimistic, 2),
		formatNumber(r.ROIPessimistic, 2),
		formatNumber(r.ROIConfidence, 2),
	}
}

func formatNumber(v float64, prec int) string {
	if v == 0 && prec == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
