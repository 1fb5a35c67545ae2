package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/csvio"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// XLSXSheetName is the worksheet holding exported transactions.
const XLSXSheetName = "Transactions"

// transferService imports and exports transactions in bulk.
type transferService struct {
	transactionService TransactionServicer
	goalService        GoalServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(transactionService TransactionServicer, goalService GoalServicer) TransferServicer {
	return &transferService{
		transactionService: transactionService,
		goalService:        goalService,
	}
}

// ExportCSV writes every transaction of the user as CSV.
func (s *transferService) ExportCSV(userID string, w io.Writer) error {
	transactions, err := s.transactionService.ListTransactions(userID)
	if err != nil {
		return err
	}
	if err := csvio.Write(w, transactions); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ExportXLSX writes every transaction of the user to a single-sheet
// workbook with the CSV columns. Amounts are numeric cells.
func (s *transferService) ExportXLSX(userID string, w io.Writer) error {
	transactions, err := s.transactionService.ListTransactions(userID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Warnw("failed to close workbook", "error", err)
		}
	}()

	if err := writeSheet(f, transactions); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := f.Write(w); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func writeSheet(f *excelize.File, transactions []models.Transaction) error {
	if err := f.SetSheetName("Sheet1", XLSXSheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	for i, h := range csvio.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(XLSXSheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(XLSXSheetName, "A1", "E1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(XLSXSheetName, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(XLSXSheetName, "B", "E", 14); err != nil {
		return err
	}

	for i := range transactions {
		tx := &transactions[i]
		row := i + 2
		date := ""
		if tx.HasDate() {
			date = tx.Date.Format(csvio.DateFormat)
		}
		values := []any{tx.Name, string(tx.Type), date, tx.Amount.InexactFloat64(), tx.Tag}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(XLSXSheetName, cell, v); err != nil {
				return err
			}
		}
		amountCell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(XLSXSheetName, amountCell, amountCell, amountStyle); err != nil {
			return err
		}
	}
	return nil
}

// ImportCSV creates one transaction per CSV row. Rows are independent:
// a failing row is reported and the others are kept. Goal rows without a
// goal id are linked by their "Contribution to <name>" name.
func (s *transferService) ImportCSV(userID string, r io.Reader) (*ImportResult, error) {
	records, err := csvio.Read(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrInvalidImportFile, err.Error()), err)
	}

	result := &ImportResult{Failed: []ImportFailure{}}
	goalIDs := make(map[string]string)

	for _, rec := range records {
		if rec.Err != nil {
			result.Failed = append(result.Failed, ImportFailure{Row: rec.Line, Error: rec.Err.Error()})
			continue
		}
		tx := rec.Transaction
		input := CreateTransactionInput{
			Type:   tx.Type,
			Name:   tx.Name,
			Tag:    tx.Tag,
			Amount: tx.Amount,
			Date:   tx.Date,
		}

		if tx.Type == models.TransactionTypeGoal {
			goalID, err := s.resolveGoal(userID, tx.Name, goalIDs)
			if err != nil {
				result.Failed = append(result.Failed, ImportFailure{Row: rec.Line, Error: err.Error()})
				continue
			}
			input.GoalID = &goalID
		}

		if _, err := s.transactionService.CreateTransaction(userID, input); err != nil {
			result.Failed = append(result.Failed, ImportFailure{Row: rec.Line, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	logger.Get().Infow("transactions imported",
		"user_id", userID,
		"imported", result.Imported,
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *transferService) resolveGoal(userID, name string, cache map[string]string) (string, error) {
	goalName, ok := strings.CutPrefix(name, models.ContributionPrefix)
	if !ok || strings.TrimSpace(goalName) == "" {
		return "", fmt.Errorf("goal row name %q must start with %q", name, models.ContributionPrefix)
	}
	if id, ok := cache[goalName]; ok {
		return id, nil
	}
	goal, err := s.goalService.GetGoalByName(userID, goalName)
	if err != nil {
		if errors.Is(err, apperrors.ErrGoalNotFound) {
			return "", fmt.Errorf("no savings goal named %q", goalName)
		}
		return "", err
	}
	cache[goalName] = goal.ID
	return goal.ID, nil
}
