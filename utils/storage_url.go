package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL is the permanent (non-signed) address of an object, for buckets served behind a CDN or proxy.
func BuildObjectAccessURL(objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	gcsURL := strings.TrimSpace(os.Getenv("GCS_URL"))
	gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if gcsURL != "" && gcsBucket != "" {
		return "https://" + gcsURL + "/" + gcsBucket + "/" + objectKey
	}

	return objectKey
}

// ExportObjectKey is where an exported workbook for one company is stored.
func ExportObjectKey(company, report, id string) string {
	company = strings.Trim(Scrub(company), "_")
	if company == "" {
		company = "default"
	}
	return "reports/" + company + "/" + report + "/" + id + ".xlsx"
}
