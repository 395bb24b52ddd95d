package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCodeGenerated(t *testing.T) {
	CodesGeneratedTotal.Reset()

	RecordCodeGenerated("success")
	RecordCodeGenerated("success")
	RecordCodeGenerated("exhausted")

	count := testutil.ToFloat64(CodesGeneratedTotal.WithLabelValues("success"))
	if count != 2 {
		t.Errorf("Expected success count = 2, got %f", count)
	}

	count = testutil.ToFloat64(CodesGeneratedTotal.WithLabelValues("exhausted"))
	if count != 1 {
		t.Errorf("Expected exhausted count = 1, got %f", count)
	}
}

func TestRecordGenerationCollision(t *testing.T) {
	before := testutil.ToFloat64(CodeGenerationCollisionsTotal)

	RecordGenerationCollision()
	RecordGenerationCollision()

	after := testutil.ToFloat64(CodeGenerationCollisionsTotal)
	if after-before != 2 {
		t.Errorf("Expected collision delta = 2, got %f", after-before)
	}
}

func TestRecordRedemption(t *testing.T) {
	RedemptionsTotal.Reset()

	RecordRedemption("success")
	RecordRedemption("expired")
	RecordRedemption("expired")

	count := testutil.ToFloat64(RedemptionsTotal.WithLabelValues("expired"))
	if count != 2 {
		t.Errorf("Expected expired count = 2, got %f", count)
	}
}

func TestSetRankedEmployees(t *testing.T) {
	SetRankedEmployees("2026-01", 42)

	count := testutil.ToFloat64(RankedEmployeesCount.WithLabelValues("2026-01"))
	if count != 42 {
		t.Errorf("Expected ranked employees = 42, got %f", count)
	}
}

func TestRecordSchedulerJobRun(t *testing.T) {
	SchedulerJobsRunTotal.Reset()

	RecordSchedulerJobRun("success")
	RecordSchedulerJobRun("error")

	count := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("error"))
	if count != 1 {
		t.Errorf("Expected error count = 1, got %f", count)
	}
}

func TestObserveDurations(t *testing.T) {
	// Histograms cannot be read back without scraping; just ensure the
	// helpers do not panic.
	ObserveRankingComputeDuration(0.5)
	ObserveSchedulerJobDuration(2.0)
}

func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		CodesGeneratedTotal,
		CodeGenerationCollisionsTotal,
		RedemptionsTotal,
		RankUpdateFailuresTotal,
		RankingLastComputeTimestamp,
		RankedEmployeesCount,
		RankingComputeDurationSeconds,
		SchedulerJobDurationSeconds,
		SchedulerJobsRunTotal,
	}

	for i, metric := range metrics {
		if metric == nil {
			t.Errorf("Metric %d is nil", i)
		}
	}
}
