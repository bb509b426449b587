package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/models/reports"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dimensionParam  = "dimension."
)

// Swapped in tests.
var (
	partyLedgerSummary = reports.GetPartyLedgerSummary
	uploadExport       = utils.UploadToGCS
	signExport         = utils.SignDownload
	publishExport      = config.PublishReportExported
)

type partyLedgerSummaryResponse struct {
	PartyType models.PartyType         `json:"party_type"`
	Company   string                   `json:"company"`
	FromDate  string                   `json:"from_date"`
	ToDate    string                   `json:"to_date"`
	Columns   []reports.ReportColumn   `json:"columns"`
	Data      []map[string]interface{} `json:"data"`
}

type reportUploadResponse struct {
	ObjectKey   string `json:"objectKey"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	AccessURL   string `json:"accessUrl,omitempty"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
}

func reportSlug(partyType models.PartyType) string {
	return strings.ToLower(string(partyType)) + "-ledger-summary"
}

// splitList accepts both ?cost_center=a,b and ?cost_center=a&cost_center=b.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, utils.SplitAndTrim(v)...)
	}
	return out
}

// bindPartyLedgerFilters reads the report filters from the query string.
// Accounting dimensions come as dimension.<fieldname>=a,b.
func bindPartyLedgerFilters(c *gin.Context) (reports.PartyLedgerSummaryFilters, error) {
	var filters reports.PartyLedgerSummaryFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		return filters, utils.NewValidationError(utils.ErrInvalidFilter, "%s", err.Error())
	}
	company, err := reports.RequestCompany(c.Request.Context(), filters.Company)
	if err != nil {
		return filters, err
	}
	filters.Company = company
	filters.CostCenter = splitList(filters.CostCenter)
	filters.Project = splitList(filters.Project)

	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, dimensionParam) {
			continue
		}
		field := strings.TrimPrefix(key, dimensionParam)
		if field == "" {
			return filters, utils.NewValidationError(utils.ErrInvalidFilter, "dimension name is required")
		}
		list := splitList(values)
		if len(list) == 0 {
			continue
		}
		if filters.Dimensions == nil {
			filters.Dimensions = make(map[string][]string)
		}
		filters.Dimensions[field] = append(filters.Dimensions[field], list...)
	}
	return filters, nil
}

func abortWithReportError(c *gin.Context, err error) {
	if utils.IsValidationError(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_ = c.Error(err)
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":          "internal server error",
		"correlation_id": cid,
	})
}

func partyLedgerSummaryHandler(partyType models.PartyType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		filters, err := bindPartyLedgerFilters(c)
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		summary, err := partyLedgerSummary(ctx, partyType, filters)
		if err != nil {
			abortWithReportError(c, err)
			return
		}

		switch {
		case c.Query("upload") == "true":
			resp, err := uploadPartyLedgerSummary(ctx, summary)
			if err != nil {
				abortWithReportError(c, err)
				return
			}
			c.JSON(http.StatusOK, resp)
		case c.Query("format") == "xlsx":
			data, err := reports.ExportPartyLedgerSummaryExcelBytes(summary)
			if err != nil {
				abortWithReportError(c, err)
				return
			}
			filename := fmt.Sprintf("%s_%s_%s.xlsx", reportSlug(partyType), summary.FromDate, summary.ToDate)
			c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
			c.Data(http.StatusOK, xlsxContentType, data)
		default:
			c.JSON(http.StatusOK, partyLedgerSummaryResponse{
				PartyType: summary.PartyType,
				Company:   summary.Company,
				FromDate:  summary.FromDate,
				ToDate:    summary.ToDate,
				Columns:   summary.Columns,
				Data:      summary.Records(),
			})
		}
	}
}

// uploadPartyLedgerSummary stores the workbook in the export bucket.
// Signing and the export event are best effort: the object is already stored when they run.
func uploadPartyLedgerSummary(ctx context.Context, summary *reports.PartyLedgerSummary) (*reportUploadResponse, error) {
	logger := config.GetLogger()
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	report := reportSlug(summary.PartyType)

	data, err := reports.ExportPartyLedgerSummaryExcelBytes(summary)
	if err != nil {
		return nil, err
	}
	objectKey := utils.ExportObjectKey(summary.Company, report, uuid.NewString())
	if err := uploadExport(ctx, objectKey, xlsxContentType, data); err != nil {
		return nil, err
	}
	resp := &reportUploadResponse{ObjectKey: objectKey}

	if link, err := signExport(ctx, objectKey, config.ExportLinkTTL()); err != nil {
		logger.WithFields(logrus.Fields{
			"field":          "export",
			"object_key":     objectKey,
			"correlation_id": cid,
		}).Warn("could not sign download link: " + err.Error())
	} else {
		resp.DownloadURL = link.DownloadURL
		resp.AccessURL = link.AccessURL
		resp.ExpiresAt = link.ExpiresAt.UTC().Format(time.RFC3339)
	}

	username, _ := utils.GetUsernameFromContext(ctx)
	id, err := publishExport(ctx, config.ReportExported{
		Report:        report,
		Company:       summary.Company,
		ObjectKey:     objectKey,
		RequestedBy:   username,
		ExportedAt:    time.Now().UTC(),
		CorrelationId: cid,
	})
	if err != nil {
		config.LogError(logger, "main", "uploadPartyLedgerSummary", "publish", objectKey, err)
	}
	resp.MessageID = id
	return resp, nil
}

func registerReportRoutes(r gin.IRouter) {
	api := r.Group("/api/reports")
	api.GET("/customer-ledger-summary", partyLedgerSummaryHandler(models.PartyTypeCustomer))
	api.GET("/supplier-ledger-summary", partyLedgerSummaryHandler(models.PartyTypeSupplier))
}
