package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(mutationsTotal.WithLabelValues("rename_folder", "success"))
	RecordMutation("rename_folder", 10*time.Millisecond, true)
	after := testutil.ToFloat64(mutationsTotal.WithLabelValues("rename_folder", "success"))
	assert.Equal(t, before+1, after)
}

func TestSetIndexSize(t *testing.T) {
	SetIndexSize("p1", 3, 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(indexDocuments.WithLabelValues("p1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(indexEmptyFolders.WithLabelValues("p1")))

	ForgetProject("p1")
	assert.Equal(t, 0, testutil.CollectAndCount(indexDocuments))
}

func TestRecordSave(t *testing.T) {
	before := testutil.ToFloat64(savedBytes)
	RecordSave(42, true)
	RecordSave(100, false)
	assert.Equal(t, before+42, testutil.ToFloat64(savedBytes))
}

func TestHandler(t *testing.T) {
	RecordRescan(time.Millisecond, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "docvault_rescans_total"))
}
