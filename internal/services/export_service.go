package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/crediplus/crediplus-api/internal/models"
	"github.com/crediplus/crediplus-api/internal/repository"
	"github.com/crediplus/crediplus-api/internal/storage"
	"github.com/crediplus/crediplus-api/pkg/logger"
)

type ExportService struct {
	settlementRepo repository.SettlementRepository
	archive        *storage.Archive
}

func NewExportService(settlementRepo repository.SettlementRepository, archive *storage.Archive) *ExportService {
	return &ExportService{settlementRepo: settlementRepo, archive: archive}
}

// ExportCSV builds a CSV listing of settlement requests matching the query
func (s *ExportService) ExportCSV(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	requests, err := s.fetchAll(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Demandes de remboursement anticipé", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"ID", "Compte", "Client", "Date de remboursement", "Capital restant", "Intérêts courus", "Pénalités", "Indemnité", "Total", "Statut"})

	for _, r := range requests {
		_ = writer.Write([]string{
			fmt.Sprintf("%d", r.ID),
			r.AccountNumber,
			r.Loan.ClientName,
			r.SettlementDate.Format("02/01/2006"),
			fmt.Sprintf("%.2f", r.RemainingPrincipal),
			fmt.Sprintf("%.2f", r.AccruedInterest),
			fmt.Sprintf("%.2f", r.AccruedPenalties),
			fmt.Sprintf("%.2f", r.EarlyRepaymentPenalty),
			fmt.Sprintf("%.2f", r.TotalSettlementAmount),
			r.Status,
		})
	}

	writer.Flush()

	filename := fmt.Sprintf("remboursements_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportXLSX builds an Excel workbook of settlement requests matching the query
func (s *ExportService) ExportXLSX(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	requests, err := s.fetchAll(ctx, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Remboursements"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"ID", "Compte", "Client", "Date de remboursement", "Capital restant", "Intérêts courus", "Pénalités", "Indemnité", "Total", "Statut"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, r := range requests {
		values := []interface{}{
			r.ID,
			r.AccountNumber,
			r.Loan.ClientName,
			r.SettlementDate.Format("02/01/2006"),
			r.RemainingPrincipal,
			r.AccruedInterest,
			r.AccruedPenalties,
			r.EarlyRepaymentPenalty,
			r.TotalSettlementAmount,
			r.Status,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("remboursements_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// SettlementStatementPDF renders the settlement statement of a single request.
// Processed settlements return the archived copy, which is the permanent
// record of what was handed to the client.
func (s *ExportService) SettlementStatementPDF(ctx context.Context, request *models.SettlementRequest) ([]byte, string, error) {
	if request.StatementPath != nil && s.archive != nil && s.archive.Exists(*request.StatementPath) {
		data, err := s.archive.Read(*request.StatementPath)
		if err == nil {
			return data, filepath.Base(*request.StatementPath), nil
		}
		logger.Warn("Failed to read archived statement, regenerating", "path", *request.StatementPath, "error", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Decompte de remboursement anticipe")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Compte:")
	pdf.Cell(60, 8, request.AccountNumber)
	pdf.Ln(6)

	if request.Loan.ID != 0 {
		pdf.Cell(60, 8, "Client:")
		pdf.Cell(60, 8, request.Loan.ClientName)
		pdf.Ln(6)
	}

	pdf.Cell(60, 8, "Date de remboursement:")
	pdf.Cell(60, 8, request.SettlementDate.Format("02/01/2006"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Composition du montant")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	lines := []struct {
		label  string
		amount float64
	}{
		{"Capital restant du:", request.RemainingPrincipal},
		{"Interets courus:", request.AccruedInterest},
		{"Penalites de retard:", request.AccruedPenalties},
		{fmt.Sprintf("Indemnite de remboursement (%.2f%%):", request.EarlyRepaymentRate), request.EarlyRepaymentPenalty},
	}
	for _, l := range lines {
		pdf.Cell(90, 8, l.label)
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", l.amount), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(90, 8, "Total a regler:")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", request.TotalSettlementAmount), "T", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(90, 8, fmt.Sprintf("Interets economises: %.2f", request.InterestSavings))
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 8)
	pdf.Cell(90, 8, fmt.Sprintf("Edite le %s", time.Now().Format("02/01/2006 15:04")))

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("decompte_%d_%s.pdf", request.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ArchiveStatement renders the statement and stores it in the archive,
// returning the relative path for database storage.
func (s *ExportService) ArchiveStatement(ctx context.Context, request *models.SettlementRequest) (string, error) {
	if s.archive == nil {
		return "", nil
	}
	data, filename, err := s.SettlementStatementPDF(ctx, request)
	if err != nil {
		return "", err
	}
	return s.archive.Save(data, filename, "statements")
}

// fetchAll pages through the repository so exports cover the full result set
func (s *ExportService) fetchAll(ctx context.Context, query *repository.ListQuery) ([]models.SettlementRequest, error) {
	q := *query
	q.Page = 1
	q.PerPage = 500

	var all []models.SettlementRequest
	for {
		requests, total, err := s.settlementRepo.List(ctx, &q)
		if err != nil {
			return nil, err
		}
		all = append(all, requests...)
		if int64(len(all)) >= total || len(requests) == 0 {
			break
		}
		q.Page++
	}
	return all, nil
}
