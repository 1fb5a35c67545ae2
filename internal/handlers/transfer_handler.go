package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// MaxImportSize caps the size of an uploaded CSV file.
const MaxImportSize = 5 << 20

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TransferHandler handles transaction import and export.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// ExportTransactions streams the user's transactions as CSV or XLSX.
// @Summary     Export transactions
// @Description Download all transactions as CSV (default) or XLSX
// @Tags        transactions
// @Produce     text/csv
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       format query string false "csv or xlsx"
// @Success     200 {file}   file "Export file"
// @Failure     400 {object} ErrorResponse "Unsupported format"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/export [get]
func (h *TransferHandler) ExportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	var contentType, ext string
	switch format := c.DefaultQuery("format", "csv"); format {
	case "csv":
		contentType, ext = contentTypeCSV, "csv"
		err = h.transferService.ExportCSV(userID, &buf)
	case "xlsx":
		contentType, ext = contentTypeXLSX, "xlsx"
		err = h.transferService.ExportXLSX(userID, &buf)
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrUnsupportedFormat,
			fmt.Sprintf("unsupported format %q, use csv or xlsx", format)))
		return
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.%s", time.Now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ImportTransactions creates transactions from an uploaded CSV file.
// @Summary     Import transactions
// @Description Upload a CSV with a name,type,date,amount,tag header. Valid rows are kept even when others fail.
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "CSV file"
// @Success     200 {object} services.ImportResult "Import summary"
// @Failure     400 {object} ErrorResponse "Missing or invalid file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/import [post]
func (h *TransferHandler) ImportTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "multipart field \"file\" is required"))
		return
	}
	if header.Size > MaxImportSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidImportFile, "file exceeds the 5 MiB limit"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidImportFile, err))
		return
	}
	defer file.Close()

	result, err := h.transferService.ImportCSV(userID, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditImport, services.ResourceTransaction, "", c.ClientIP(),
		map[string]any{"file": header.Filename, "imported": result.Imported, "failed": len(result.Failed)})

	c.JSON(http.StatusOK, result)
}
