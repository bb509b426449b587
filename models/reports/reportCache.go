package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

// reportCacheKey is stable for identical effective queries: name + SHA1 of the fingerprint.
func reportCacheKey(name, fingerprint string) string {
	return "Report:" + name + ":" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(fingerprint)).String()
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d < config.ReportSlowThreshold() {
		return
	}
	company, _ := utils.GetCompanyFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"company":        company,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow_report")
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(key, obj, ttl)
}
